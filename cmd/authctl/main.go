// Command authctl is an operator tool that provisions accounts directly in
// the database, bypassing the HTTP API and the verification mail round-trip.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/passwords"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Enter user name (email)")

	email, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	email = strings.TrimSpace(email)

	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	defer common.WipeByteArray(password)

	users := services.NewUserService(rm)
	creds := services.NewCredentialService(rm, passwords.NewHasher(cfg.BcryptCost))

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := users.Create(ctx, tx, email)
		if err != nil {
			return err
		}
		if _, err := creds.Create(ctx, tx, user.ID, string(password)); err != nil {
			return err
		}
		// operator-created accounts skip the mail round-trip
		return users.MarkEmailVerified(ctx, tx, user.ID)
	})
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	fmt.Println("Success!")

}
