// Package nameservice reads the zledger/accounts folder and creates a name
// service lookup for the accounts known to this ledger deployment.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/openfund/ledger/foundation/ledger/account"
)

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	accounts map[account.ID]string
}

// New constructs a name service with accounts from the specified folder.
// The names come from the file names of the .ecdsa key files.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[account.ID]string),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return err
		}

		accountID := account.PublicKeyToID(privateKey.PublicKey)
		ns.accounts[accountID] = strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified account.
func (ns *NameService) Lookup(id account.ID) string {
	name, exists := ns.accounts[id]
	if !exists {
		return string(id)
	}
	return name
}

// Copy returns a copy of the map of names and accounts.
func (ns *NameService) Copy() map[account.ID]string {
	cpy := make(map[account.ID]string, len(ns.accounts))
	for accountID, name := range ns.accounts {
		cpy[accountID] = name
	}
	return cpy
}
