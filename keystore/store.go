package keystore

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sigil.co/sigil/keyid"
	"sigil.co/sigil/keymat"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
)

// Store is a filesystem-backed seed store. Layout:
//
//	<dir>/<identifier>/root.key
//	<dir>/<identifier>/roles/<role>.key
type Store struct {
	Directory string
}

// Entry describes one stored identifier and its derived roles.
type Entry struct {
	Identifier string
	Roles      []string
}

// DefaultDirectory returns ~/.sigil/keys.
func DefaultDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".sigil", "keys"), nil
}

// New constructs a store rooted at directory, or at DefaultDirectory
// when directory is empty.
func New(directory string) (*Store, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &Store{Directory: directory}, nil
}

// CheckName validates an identifier or role: non-empty, ASCII letters,
// digits, hyphen, underscore.
func CheckName(name string) error {
	if name == "" {
		return errors.New("keystore: name cannot be empty")
	}
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("keystore: invalid character %q in name", char)
	}
	return nil
}

func (s *Store) rootPath(identifier string) string {
	return filepath.Join(s.Directory, identifier, "root.key")
}

func (s *Store) rolePath(identifier, role string) string {
	return filepath.Join(s.Directory, identifier, "roles", role+".key")
}

func (s *Store) seedPath(identifier, role string) string {
	if role == "" {
		return s.rootPath(identifier)
	}
	return s.rolePath(identifier, role)
}

// ParseSeedHex decodes a hex-encoded Ed25519 seed, tolerating an 0x
// prefix and surrounding whitespace.
func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if len(data) != ed25519.SeedSize {
		return nil, fmt.Errorf("keystore: expected seed length of %d bytes, got %d", ed25519.SeedSize, len(data))
	}
	return data, nil
}

func (s *Store) saveSeed(path string, seed []byte, overwrite bool) error {
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("keystore: expected seed length of %d bytes", ed25519.SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func (s *Store) loadSeed(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(strings.TrimSpace(string(data)))
}

// InitRoot stores seed as the root key for identifier and returns the
// derived public key identifier and the file path written.
func (s *Store) InitRoot(identifier string, seed []byte, overwrite bool) (keyID, path string, err error) {
	if err := CheckName(identifier); err != nil {
		return "", "", err
	}
	path = s.rootPath(identifier)
	if err := s.saveSeed(path, seed, overwrite); err != nil {
		return "", "", err
	}
	return seedKeyID(seed), path, nil
}

// DeriveRole derives and stores a role-scoped seed from identifier's
// root seed and returns the derived public key identifier and the file
// path written.
func (s *Store) DeriveRole(identifier, role string, overwrite bool) (keyID, path string, err error) {
	if err := CheckName(identifier); err != nil {
		return "", "", err
	}
	if err := CheckName(role); err != nil {
		return "", "", err
	}
	rootSeed, err := s.loadSeed(s.rootPath(identifier))
	if err != nil {
		return "", "", err
	}
	roleSeed, err := DeriveRoleSeed(rootSeed, role)
	if err != nil {
		return "", "", err
	}
	path = s.rolePath(identifier, role)
	if err := s.saveSeed(path, roleSeed, overwrite); err != nil {
		return "", "", err
	}
	return seedKeyID(roleSeed), path, nil
}

// KeyID returns the public key identifier for a stored seed. role may
// be empty for the root key.
func (s *Store) KeyID(identifier, role string) (string, error) {
	if err := CheckName(identifier); err != nil {
		return "", err
	}
	if role != "" {
		if err := CheckName(role); err != nil {
			return "", err
		}
	}
	seed, err := s.loadSeed(s.seedPath(identifier, role))
	if err != nil {
		return "", err
	}
	return seedKeyID(seed), nil
}

// LoadPrivateKey reads a stored seed into pool-owned key material
// tagged (ed25519, signing). The heap copy of the seed is zeroed before
// returning. role may be empty for the root key.
func (s *Store) LoadPrivateKey(ctx context.Context, pool *secmem.Pool, identifier, role string) (*keymat.PrivateKey, error) {
	if err := CheckName(identifier); err != nil {
		return nil, err
	}
	if role != "" {
		if err := CheckName(role); err != nil {
			return nil, err
		}
	}
	seed, err := s.loadSeed(s.seedPath(identifier, role))
	if err != nil {
		return nil, err
	}

	buf, err := pool.Rent(ctx, len(seed))
	if err != nil {
		return nil, err
	}
	copy(buf.Bytes(), seed)
	for i := range seed {
		seed[i] = 0
	}
	return keymat.NewPrivateKey(buf, sigalg.TagFor(sigalg.Ed25519, sigalg.Signing)), nil
}

// List returns stored identifiers and their derived roles, sorted.
func (s *Store) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var identifiers []string
	for _, entry := range entries {
		if entry.IsDir() {
			identifiers = append(identifiers, entry.Name())
		}
	}
	sort.Strings(identifiers)

	var result []Entry
	for _, identifier := range identifiers {
		rolesDir := filepath.Join(s.Directory, identifier, "roles")
		roleEntries, rerr := os.ReadDir(rolesDir)
		var roles []string
		if rerr == nil {
			for _, roleEntry := range roleEntries {
				if roleEntry.IsDir() {
					continue
				}
				if strings.HasSuffix(roleEntry.Name(), ".key") {
					roles = append(roles, strings.TrimSuffix(roleEntry.Name(), ".key"))
				}
			}
			sort.Strings(roles)
		}
		result = append(result, Entry{Identifier: identifier, Roles: roles})
	}
	return result, nil
}

// seedKeyID derives the public key identifier for an Ed25519 seed.
func seedKeyID(seed []byte) string {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return keyid.String(pub)
}
