package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/johnquangdev/acta-generator/pkg/config"
	"github.com/johnquangdev/acta-generator/pkg/jwt"
)

// token prints an operator token for the run history routes
func main() {
	subject := flag.String("subject", "", "who the token is issued to")
	ttl := flag.Duration("ttl", 0, "token lifetime (default OPERATOR_TOKEN_EXPIRY)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s -subject NAME [-ttl 12h]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *subject == "" {
		flag.Usage()
		os.Exit(2)
	}

	auth, err := config.LoadAuth()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	expiry := auth.TokenExpiry
	if *ttl > 0 {
		expiry = *ttl
	}

	token, err := jwt.NewManager(auth.OperatorSecret, expiry).GenerateOperatorToken(*subject)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println(token)
	log.Printf("token for %q expires at %s", *subject, time.Now().Add(expiry).Format(time.RFC3339))
}
