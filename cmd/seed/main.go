// Package main seeds the database with the initial staff accounts and a few
// sample classes and students. Seeding is idempotent: existing rows are left
// untouched.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmoura/gestao-escolar/internal/auth"
	"github.com/dmoura/gestao-escolar/internal/config"
)

type seedUsuario struct {
	nome  string
	email string
	senha string
	cargo string
}

type seedTurma struct {
	nome       string
	descricao  string
	capacidade int
	anoLetivo  string
	periodo    string
}

type seedAluno struct {
	nome           string
	dataNascimento string
	email          string
	turmaNome      string
}

var usuarios = []seedUsuario{
	{"Administrador", "admin@escola.com", "123456", "diretor"},
	{"Maria Silva", "maria@escola.com", "123456", "coordenador"},
	{"Ana Santos", "ana@escola.com", "123456", "secretario"},
	{"João Oliveira", "joao@escola.com", "123456", "professor"},
}

var turmas = []seedTurma{
	{"1º ANO A", "Primeiro ano do ensino fundamental", 30, "2026", "manhã"},
	{"2º ANO A", "Segundo ano do ensino fundamental", 30, "2026", "manhã"},
	{"3º ANO B", "Terceiro ano do ensino fundamental", 25, "2026", "tarde"},
}

var alunos = []seedAluno{
	{"Pedro Almeida", "2018-03-12", "pedro.almeida@exemplo.com", "1º ANO A"},
	{"Julia Costa", "2017-07-25", "julia.costa@exemplo.com", "2º ANO A"},
	{"Lucas Ferreira", "2016-11-02", "lucas.ferreira@exemplo.com", "3º ANO B"},
}

func main() {
	var onlyUsers = flag.Bool("only-users", false, "Seed only the staff accounts")
	flag.Parse()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	if err := seedUsuarios(ctx, pool); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	if !*onlyUsers {
		if err := seedTurmas(ctx, pool); err != nil {
			log.Fatalf("Failed to seed classes: %v", err)
		}
		if err := seedAlunos(ctx, pool); err != nil {
			log.Fatalf("Failed to seed students: %v", err)
		}
	}

	log.Println("Seed completed")
}

func seedUsuarios(ctx context.Context, pool *pgxpool.Pool) error {
	for _, u := range usuarios {
		hash, err := auth.HashPassword(u.senha)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", u.email, err)
		}

		tag, err := pool.Exec(ctx, `
			INSERT INTO usuarios (nome, email, senha_hash, cargo, ativo)
			VALUES ($1, LOWER($2), $3, $4, TRUE)
			ON CONFLICT (email) DO NOTHING
		`, u.nome, u.email, hash, u.cargo)
		if err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.email, err)
		}

		if tag.RowsAffected() > 0 {
			log.Printf("Created user %s (%s)", u.email, u.cargo)
		} else {
			log.Printf("User %s already exists, skipping", u.email)
		}
	}
	return nil
}

func seedTurmas(ctx context.Context, pool *pgxpool.Pool) error {
	for _, t := range turmas {
		tag, err := pool.Exec(ctx, `
			INSERT INTO turmas (nome, descricao, capacidade, ano_letivo, periodo, ativa)
			VALUES ($1, $2, $3, $4, $5, TRUE)
			ON CONFLICT (nome) DO NOTHING
		`, t.nome, t.descricao, t.capacidade, t.anoLetivo, t.periodo)
		if err != nil {
			return fmt.Errorf("failed to insert class %s: %w", t.nome, err)
		}

		if tag.RowsAffected() > 0 {
			log.Printf("Created class %s", t.nome)
		} else {
			log.Printf("Class %s already exists, skipping", t.nome)
		}
	}
	return nil
}

func seedAlunos(ctx context.Context, pool *pgxpool.Pool) error {
	for _, a := range alunos {
		tag, err := pool.Exec(ctx, `
			INSERT INTO alunos (nome, data_nascimento, email, status, data_matricula, turma_id)
			SELECT $1, $2::date, LOWER($3), 'ativo', CURRENT_DATE, t.id
			FROM turmas t
			WHERE t.nome = $4
			ON CONFLICT (email) DO NOTHING
		`, a.nome, a.dataNascimento, a.email, a.turmaNome)
		if err != nil {
			return fmt.Errorf("failed to insert student %s: %w", a.nome, err)
		}

		if tag.RowsAffected() > 0 {
			log.Printf("Created student %s", a.nome)
		} else {
			log.Printf("Student %s already exists, skipping", a.nome)
		}
	}
	return nil
}
