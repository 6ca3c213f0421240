// Package main - Atlas GORM migration support binary
package main

import (
	"fmt"

	"ariga.io/atlas-provider-gorm/gormschema"
	"github.com/alwitt/bluelight/db"
	"github.com/apex/log"
	"github.com/spf13/pflag"
)

func main() {
	dialect := pflag.String("dialect", "postgres", "target SQL dialect (postgres, sqlite)")
	pflag.Parse()

	stmts, err := gormschema.New(*dialect).Load(
		&db.SequenceRow{},
		&db.EntryRow{},
		&db.AttachmentRow{},
		&db.AuditEventRow{},
		&db.EncryptionKeyRow{},
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to load GORM models")
	}
	fmt.Printf("%s\n", stmts)
}
