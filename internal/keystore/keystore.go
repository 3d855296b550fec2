package keystore

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/terraincognita07/selene/internal/security"
	"golang.org/x/crypto/chacha20poly1305"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const secretHexLength = chacha20poly1305.KeySize * 2

// Keystore is a persistent string store whose values are sealed with
// chacha20poly1305. The key material lives in a secret file next to the
// database, created on first use.
type Keystore struct {
	database *gorm.DB
	key      []byte
}

type secureItem struct {
	Key        string `gorm:"primaryKey;column:key"`
	Nonce      []byte `gorm:"not null"`
	Ciphertext []byte `gorm:"not null"`
}

func (secureItem) TableName() string {
	return "secure_items"
}

func Open(database *gorm.DB, secretPath string) (*Keystore, error) {
	key, err := loadOrCreateSecret(secretPath)
	if err != nil {
		return nil, err
	}
	return &Keystore{database: database, key: key}, nil
}

func (store *Keystore) Get(key string) (string, bool, error) {
	item := secureItem{}
	result := store.database.Where("key = ?", key).Limit(1).Find(&item)
	if result.Error != nil {
		return "", false, fmt.Errorf("load secure item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", false, nil
	}

	aead, err := chacha20poly1305.New(store.key)
	if err != nil {
		return "", false, fmt.Errorf("init cipher: %w", err)
	}
	plaintext, err := aead.Open(nil, item.Nonce, item.Ciphertext, []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("unseal secure item %s: %w", key, err)
	}
	return string(plaintext), true, nil
}

func (store *Keystore) Set(key string, value string) error {
	aead, err := chacha20poly1305.New(store.key)
	if err != nil {
		return fmt.Errorf("init cipher: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	item := secureItem{
		Key:        key,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, []byte(value), []byte(key)),
	}
	err = store.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"nonce", "ciphertext"}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("persist secure item: %w", err)
	}
	return nil
}

func (store *Keystore) Delete(key string) error {
	if err := store.database.Delete(&secureItem{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("delete secure item: %w", err)
	}
	return nil
}

func loadOrCreateSecret(secretPath string) ([]byte, error) {
	raw, err := os.ReadFile(secretPath)
	if err == nil {
		key, decodeErr := hex.DecodeString(string(raw))
		if decodeErr != nil || len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("secret file %s is malformed", secretPath)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read secret file: %w", err)
	}

	secretHex, err := security.RandomString(secretHexLength, "0123456789abcdef")
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(secretPath), 0o755); err != nil {
		return nil, fmt.Errorf("create secret directory: %w", err)
	}
	if err := os.WriteFile(secretPath, []byte(secretHex), 0o600); err != nil {
		return nil, fmt.Errorf("write secret file: %w", err)
	}

	key, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("decode generated secret: %w", err)
	}
	return key, nil
}
