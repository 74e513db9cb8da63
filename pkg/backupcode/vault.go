package backupcode

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultCount is the number of codes issued per batch.
	DefaultCount = 10

	codeDigits = 8
)

var (
	codeFormatRegex = regexp.MustCompile(`^\d{4}-\d{4}$`)
	bareDigitsRegex = regexp.MustCompile(`^\d{8}$`)

	codeMax = big.NewInt(100000000) // 10^8, one value per 8-digit code
)

// Vault issues and redeems one-time backup codes. Plaintext codes exist only
// in the return value of Generate; the storage layer holds SHA-256 hashes
// and the used flag that makes redemption one-shot.
type Vault struct {
	storage Storage
}

// NewVault creates a vault backed by the given storage.
func NewVault(storage Storage) *Vault {
	return &Vault{storage: storage}
}

// Generate creates count backup codes for the user, persists their hashes as
// one atomic batch replacing any previous batch, and returns the plaintext
// codes exactly once for one-time display. They are not retrievable again.
func (v *Vault) Generate(ctx context.Context, userID uuid.UUID, count int) ([]string, error) {
	if count <= 0 {
		count = DefaultCount
	}

	codes := make([]string, 0, count)
	hashes := make([]string, 0, count)
	seen := make(map[string]struct{}, count)

	for len(codes) < count {
		code, err := randomCode()
		if err != nil {
			return nil, err
		}
		// 10^8 values per batch of ten makes collisions unlikely, but a
		// duplicate would silently halve a code's worth.
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
		hashes = append(hashes, HashCode(code))
	}

	if err := v.storage.ReplaceBatch(ctx, userID, hashes, time.Now()); err != nil {
		return nil, errors.Join(ErrFailedToStoreCodes, err)
	}

	return codes, nil
}

// Consume redeems a backup code. It returns true exactly once per issued
// code: the storage marks the row used in the same operation that finds it,
// so two concurrent redemptions of the same code cannot both succeed. An
// unknown or already-used code returns false with no state change.
func (v *Vault) Consume(ctx context.Context, userID uuid.UUID, candidate string) (bool, error) {
	code, ok := Normalize(candidate)
	if !ok {
		return false, nil
	}
	return v.storage.Consume(ctx, userID, HashCode(code), time.Now())
}

// Remaining reports how many unused codes the user still has.
func (v *Vault) Remaining(ctx context.Context, userID uuid.UUID) (int, error) {
	return v.storage.CountUnused(ctx, userID)
}

// Clear removes all backup codes for the user, used or not.
func (v *Vault) Clear(ctx context.Context, userID uuid.UUID) error {
	return v.storage.DeleteByUser(ctx, userID)
}

// Normalize canonicalizes user input to the NNNN-NNNN form. It tolerates
// surrounding whitespace and a missing dash; anything else is rejected.
func Normalize(candidate string) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	if bareDigitsRegex.MatchString(candidate) {
		candidate = candidate[:4] + "-" + candidate[4:]
	}
	if !codeFormatRegex.MatchString(candidate) {
		return "", false
	}
	return candidate, true
}

// HashCode returns the hex SHA-256 digest stored in place of the plaintext.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// randomCode draws an 8-digit code from the CSPRNG, formatted NNNN-NNNN.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeMax)
	if err != nil {
		return "", errors.Join(ErrEntropyUnavailable, err)
	}
	digits := n.String()
	for len(digits) < codeDigits {
		digits = "0" + digits
	}
	return digits[:4] + "-" + digits[4:], nil
}
