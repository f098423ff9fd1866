package toml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/ports"
)

const (
	configName         = "config"
	configType         = "toml"
	accountsPathKey    = "accounts.path"
	accountsFileMode   = 0o600
	accountsDirMode    = 0o700
	launcherConfigDir  = ".turkuazz"
	accountsConfigFile = "accounts.toml"
	tempFilePattern    = ".accounts-*.toml.tmp"
)

// Repository persists the credential snapshot as a TOML document. Writes go
// through a temp file and rename so a crash never leaves a torn accounts
// file at the canonical path. With a secret store attached, token material
// is stored behind a ref instead of inline.
type Repository struct {
	accountsPath string
	secrets      ports.SecretStore
	mu           *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.IdentityRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper, secrets ports.SecretStore) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, launcherConfigDir, accountsConfigFile)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, launcherConfigDir))
	cfg.SetDefault(accountsPathKey, defaultPath)

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	accountsPath := cfg.GetString(accountsPathKey)
	if accountsPath == "" {
		return nil, errors.New("accounts path is empty")
	}
	accountsPath, err = normalizeAccountsPath(accountsPath)
	if err != nil {
		return nil, err
	}

	return &Repository{accountsPath: accountsPath, secrets: secrets, mu: lockForPath(accountsPath)}, nil
}

// NewRepositoryAt opens a repository at an explicit path, bypassing config
// resolution. A nil secret store keeps tokens inline in the accounts file.
func NewRepositoryAt(path string, secrets ports.SecretStore) (*Repository, error) {
	normalized, err := normalizeAccountsPath(path)
	if err != nil {
		return nil, err
	}

	return &Repository{accountsPath: normalized, secrets: secrets, mu: lockForPath(normalized)}, nil
}

func (r *Repository) Load(ctx context.Context) (domain.CredentialSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.CredentialSnapshot{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.CredentialSnapshot{}, err
	}

	identities := make([]domain.Identity, 0, len(file.Identities))
	for _, entry := range file.Identities {
		identity := fromSchema(entry)
		if entry.TokenRef != "" && r.secrets != nil {
			// A lost secret leaves the identity stored but signed out.
			if payload, err := r.resolveTokens(ctx, entry.TokenRef); err == nil {
				identity.AccessToken = payload.AccessToken
				identity.RefreshToken = payload.RefreshToken
			}
		}
		identities = append(identities, identity)
	}

	return domain.CredentialSnapshot{Identities: identities, ActiveKey: file.Active}, nil
}

func (r *Repository) Save(ctx context.Context, snapshot domain.CredentialSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous, err := r.readSchema()
	if err != nil {
		return err
	}

	file := fileSchema{Active: snapshot.ActiveKey}
	file.applyDefaults()
	liveRefs := map[string]bool{}
	for _, identity := range snapshot.Identities {
		entry := toSchema(identity)
		if r.secrets != nil && (identity.AccessToken != "" || identity.RefreshToken != "") {
			ref := tokenSecretKey(identity)
			if err := r.storeTokens(ctx, ref, tokenPayload{
				AccessToken:  identity.AccessToken,
				RefreshToken: identity.RefreshToken,
			}); err != nil {
				return err
			}
			entry.TokenRef = ref
			entry.AccessToken = ""
			entry.RefreshToken = ""
			liveRefs[ref] = true
		}
		file.Identities = append(file.Identities, entry)
	}

	if err := r.writeSchema(file); err != nil {
		return err
	}

	// Drop secrets for identities that no longer exist.
	if r.secrets != nil {
		for _, entry := range previous.Identities {
			if entry.TokenRef != "" && !liveRefs[entry.TokenRef] {
				_ = r.secrets.Delete(ctx, entry.TokenRef)
			}
		}
	}

	return nil
}

func tokenSecretKey(identity domain.Identity) string {
	return "turkuazz/accounts/" + identity.DedupKey() + "/tokens"
}

func (r *Repository) storeTokens(ctx context.Context, ref string, payload tokenPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode token secret: %w", err)
	}

	if err := r.secrets.Put(ctx, ref, string(data)); err != nil {
		return fmt.Errorf("store token secret: %w", err)
	}

	return nil
}

func (r *Repository) resolveTokens(ctx context.Context, ref string) (tokenPayload, error) {
	value, err := r.secrets.Get(ctx, ref)
	if err != nil {
		return tokenPayload{}, err
	}

	var payload tokenPayload
	if err := json.Unmarshal([]byte(value), &payload); err != nil {
		return tokenPayload{}, fmt.Errorf("decode token secret: %w", err)
	}

	return payload, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.accountsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read accounts file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode accounts file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeAccountsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve accounts path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.accountsPath), accountsDirMode); err != nil {
		return fmt.Errorf("create accounts directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode accounts file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.accountsPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp accounts file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp accounts file: %w", err)
	}

	if err := tempFile.Chmod(accountsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp accounts file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp accounts file: %w", err)
	}

	if err := os.Rename(tempName, r.accountsPath); err != nil {
		return fmt.Errorf("replace accounts file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(r.accountsPath, accountsFileMode); err != nil {
		return fmt.Errorf("chmod accounts file: %w", err)
	}

	return nil
}
