// Passtool reads a password from the terminal and prints the bcrypt hash
// that belongs in the password field of a user document.  Useful for
// repairing an account credential by hand.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var cost = flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost for the generated hash.")

// hashPassword hashes plaintext at the given cost.  The web app registers
// users at bcrypt.DefaultCost; a hash generated at any cost verifies the
// same way.
func hashPassword(plaintext []byte, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(plaintext, cost)
	if err != nil {
		return "", fmt.Errorf("while hashing password: %w", err)
	}
	return string(hash), nil
}

func do() error {
	fmt.Print("Password: ")
	pass, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("while reading password: %w", err)
	}
	fmt.Println()

	hash, err := hashPassword(pass, *cost)
	if err != nil {
		return err
	}

	fmt.Println(hash)
	return nil
}

func main() {
	flag.Parse()

	if err := do(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
