// Package migrations embute os arquivos SQL do goose no binário.
package migrations

import "embed"

// FS contém as migrações, em ordem de versão.
//
//go:embed *.sql
var FS embed.FS
