package cli

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"libris/internal/auth"
	"libris/internal/config"
	"libris/internal/database"
	"libris/internal/database/users"
)

// CreateUserCommand registers an account from the command line, for
// bootstrapping a fresh database before the first web signup.
type CreateUserCommand struct {
	Username     string
	Password     string
	Firstname    string
	Lastname     string
	Email        string
	DatabasePath string
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password (prompted on stdin if omitted)")
	fs.StringVar(&cmd.Firstname, "firstname", "", "First name")
	fs.StringVar(&cmd.Lastname, "lastname", "", "Last name")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the library database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -email <email> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account in the library database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return fmt.Errorf("required flag -username not provided")
	}
	if cmd.Email == "" {
		return fmt.Errorf("required flag -email not provided")
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	if cmd.Password == "" {
		fmt.Print("Password: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		cmd.Password = strings.TrimRight(line, "\r\n")
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	cfg := config.NewConfig()
	service := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

	if err := service.Signup(cmd.Username, cmd.Password, cmd.Firstname, cmd.Lastname, cmd.Email); err != nil {
		return err
	}

	fmt.Printf("Created user %q\n", cmd.Username)
	return nil
}
