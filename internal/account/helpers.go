// internal/account/helpers.go
//
// Helper functions shared across loader, registry, and tests.
//
// Context
// -------
// These helpers centralise logic reused by multiple account-related files:
//
//   • `resolveLookupHost` — maps the literal Host header “localhost” to an
//     alias defined via `ATRIUM_LOCALHOST_ALIAS` or
//     `database.localhost_alias` so dev instances can masquerade as any
//     real account row.
//
//   • `sanitizeHost`      — converts the lookup host into a canonical key
//     that doubles as the DB user name and schema.  Dots are stripped so
//     “site.yaniz.dev” → “siteyanizdev”.
//
//   • `buildAccountDSN`   — produces the MySQL DSN string given the
//     canonical key and the Vault-resolved password.
//
//   • `accountPassword`   — resolves the per-account DB password from
//     Vault, falling back to the `ATRIUM_ACCOUNT_DB_PASSWORD` env var for
//     dev setups without a Vault server.
//
// Notes
// -----
// • No logging here; caller decides what to log.
// • Oxford commas, two spaces after periods.

package account

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yanizio/atrium/internal/config"
	"github.com/yanizio/atrium/internal/vault"
)

//
// resolveLookupHost → account-row key
//

// resolveLookupHost returns the host string that should be used when
// querying the `account` table.  For "localhost" we allow an alias so local
// development can point at a real account without inserting an extra row.
func resolveLookupHost(h string) string {
	if h != "localhost" {
		return h
	}
	if alias := os.Getenv("ATRIUM_LOCALHOST_ALIAS"); alias != "" {
		return alias
	}
	if cfg := config.Get(); cfg != nil && cfg.Database.LocalhostAlias != "" {
		return cfg.Database.LocalhostAlias
	}
	return "devlocal"
}

//
// sanitizeHost → canonical DB/user key
//

// sanitizeHost converts the lookup host to a canonical key used for
// database user name, schema, and Vault secret path.  All dots are
// removed so “api.example.dev” becomes “apiexampledev”.
func sanitizeHost(h string) string {
	return strings.ReplaceAll(resolveLookupHost(h), ".", "")
}

//
// buildAccountDSN → MySQL DSN
//

// buildAccountDSN fills the canonical template:
//
//	{key}:{password}@tcp(127.0.0.1:3306)/{key}?parseTime=true&loc=Local
func buildAccountDSN(key, pw string) string {
	return fmt.Sprintf(
		"%s:%s@tcp(127.0.0.1:3306)/%s?parseTime=true&loc=Local",
		key, pw, key,
	)
}

//
// accountPassword → Vault or env fallback
//

// accountPassword fetches secret/accounts/<key>#db_password from Vault,
// caching the value for an hour.  When no Vault client is configured the
// env fallback keeps dev bootstraps working.
func accountPassword(ctx context.Context, key string) (string, error) {
	if cli := vault.Shared(); cli != nil {
		return cli.GetKV(ctx, "secret/accounts/"+key, "db_password", time.Hour)
	}
	if pw := os.Getenv("ATRIUM_ACCOUNT_DB_PASSWORD"); pw != "" {
		return pw, nil
	}
	return "", fmt.Errorf("no credential source for account %q", key)
}
