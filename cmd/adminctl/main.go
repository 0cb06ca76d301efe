// adminctl provisions back-office access. There is no HTTP endpoint
// for this: granting admin is an operator action run against the
// database directly.
//
//	DB_DSN=... adminctl -email admin@example.com -username admin -password s3cret
//
// If the email already belongs to a user, that user is promoted.
// Otherwise a new admin user is created with a funded account row.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"pipmatrix/internal/db"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	username := flag.String("username", "", "username for a newly created admin")
	password := flag.String("password", "", "password for a newly created admin")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "adminctl: -email is required")
		flag.Usage()
		os.Exit(2)
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "adminctl: DB_DSN env var is required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "adminctl: connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "adminctl: migrate: %v\n", err)
		os.Exit(1)
	}

	var userID int64
	err = pool.QueryRow(ctx, "select id from users where email = lower($1)", *email).Scan(&userID)
	switch {
	case err == nil:
		if _, err := pool.Exec(ctx, "update users set is_admin = true where id = $1", userID); err != nil {
			fmt.Fprintf(os.Stderr, "adminctl: promote: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("promoted existing user %d (%s) to admin\n", userID, *email)
	case err == pgx.ErrNoRows:
		if *username == "" || *password == "" {
			fmt.Fprintln(os.Stderr, "adminctl: -username and -password are required to create a new admin")
			os.Exit(2)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "adminctl: hash: %v\n", err)
			os.Exit(1)
		}
		tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "adminctl: begin: %v\n", err)
			os.Exit(1)
		}
		defer tx.Rollback(ctx)
		err = tx.QueryRow(ctx, `
			insert into users (username, email, password_hash, is_admin, is_verified)
			values ($1, lower($2), $3, true, true)
			returning id
		`, *username, *email, string(hash)).Scan(&userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "adminctl: create user: %v\n", err)
			os.Exit(1)
		}
		if _, err := tx.Exec(ctx, "insert into accounts (user_id) values ($1)", userID); err != nil {
			fmt.Fprintf(os.Stderr, "adminctl: create account: %v\n", err)
			os.Exit(1)
		}
		if err := tx.Commit(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "adminctl: commit: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created admin user %d (%s)\n", userID, *email)
	default:
		fmt.Fprintf(os.Stderr, "adminctl: lookup: %v\n", err)
		os.Exit(1)
	}
}
