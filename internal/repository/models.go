package repository

import (
	"time"
)

// Cargo is the closed set of staff roles.
type Cargo string

const (
	CargoDiretor     Cargo = "diretor"
	CargoCoordenador Cargo = "coordenador"
	CargoSecretario  Cargo = "secretario"
	CargoProfessor   Cargo = "professor"
)

// Valid reports whether c is one of the four known roles.
func (c Cargo) Valid() bool {
	switch c {
	case CargoDiretor, CargoCoordenador, CargoSecretario, CargoProfessor:
		return true
	}
	return false
}

// In reports whether c is a member of the given role set. It is the single
// predicate behind every role-gated route.
func (c Cargo) In(cargos ...Cargo) bool {
	for _, allowed := range cargos {
		if c == allowed {
			return true
		}
	}
	return false
}

// StatusAluno is the enrollment status of a student.
type StatusAluno string

const (
	StatusAtivo   StatusAluno = "ativo"
	StatusInativo StatusAluno = "inativo"
)

// Valid reports whether s is a known status.
func (s StatusAluno) Valid() bool {
	return s == StatusAtivo || s == StatusInativo
}

// Usuario represents a staff account in the database
type Usuario struct {
	ID           int64      `db:"id"`
	Nome         string     `db:"nome"`
	Email        string     `db:"email"`
	SenhaHash    string     `db:"senha_hash"`
	Cargo        Cargo      `db:"cargo"`
	Ativo        bool       `db:"ativo"`
	DataCriacao  time.Time  `db:"data_criacao"`
	UltimoAcesso *time.Time `db:"ultimo_acesso"`
}

// Turma represents a class in the database
type Turma struct {
	ID          int64     `db:"id"`
	Nome        string    `db:"nome"`
	Descricao   *string   `db:"descricao"`
	Capacidade  int       `db:"capacidade"`
	AnoLetivo   string    `db:"ano_letivo"`
	Periodo     *string   `db:"periodo"`
	Ativa       bool      `db:"ativa"`
	DataCriacao time.Time `db:"data_criacao"`
}

// TurmaComAlunos pairs a class with the count of its active students.
type TurmaComAlunos struct {
	Turma
	TotalAlunos int `db:"total_alunos"`
}

// Aluno represents a student in the database
type Aluno struct {
	ID                  int64       `db:"id"`
	Nome                string      `db:"nome"`
	CPF                 *string     `db:"cpf"`
	RG                  *string     `db:"rg"`
	DataNascimento      time.Time   `db:"data_nascimento"`
	Email               *string     `db:"email"`
	Telefone            *string     `db:"telefone"`
	Endereco            *string     `db:"endereco"`
	NomeResponsavel     *string     `db:"nome_responsavel"`
	TelefoneResponsavel *string     `db:"telefone_responsavel"`
	Status              StatusAluno `db:"status"`
	DataMatricula       *time.Time  `db:"data_matricula"`
	Observacoes         *string     `db:"observacoes"`
	TurmaID             *int64      `db:"turma_id"`
	DataCriacao         time.Time   `db:"data_criacao"`
	DataAtualizacao     time.Time   `db:"data_atualizacao"`
}

// AlunoComTurma carries the joined class name for list responses.
type AlunoComTurma struct {
	Aluno
	TurmaNome *string `db:"turma_nome"`
}

// ListAlunoParams holds filters for listing students.
type ListAlunoParams struct {
	Skip    int
	Limit   int
	Search  string
	TurmaID *int64
	Status  *StatusAluno
}

// HistoricoLogin is an append-only record of a login attempt. UsuarioID 0 is
// the sentinel for attempts that never resolved to an account.
type HistoricoLogin struct {
	ID        int64     `db:"id"`
	UsuarioID int64     `db:"usuario_id"`
	DataHora  time.Time `db:"data_hora"`
	IPAddress string    `db:"ip_address"`
	UserAgent string    `db:"user_agent"`
	Sucesso   bool      `db:"sucesso"`
}

// AlunosPorTurma is one dashboard row: class name and its student count.
type AlunosPorTurma struct {
	Turma string `db:"turma" json:"turma"`
	Total int    `db:"total" json:"total"`
}

// DashboardStats aggregates the counters shown on the dashboard.
type DashboardStats struct {
	TotalAlunos    int              `json:"total_alunos"`
	AlunosAtivos   int              `json:"alunos_ativos"`
	AlunosInativos int              `json:"alunos_inativos"`
	TotalTurmas    int              `json:"total_turmas"`
	TurmasAtivas   int              `json:"turmas_ativas"`
	AlunosPorTurma []AlunosPorTurma `json:"alunos_por_turma"`
	UsuariosAtivos int              `json:"usuarios_ativos"`
}
