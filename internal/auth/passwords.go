package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

var errBadPasswordHash = errors.New("malformed password hash")

// Argon2id cost settings for new hashes. Stored hashes carry their own
// settings, so these can change without invalidating old passwords.
const (
	argonMemory      uint32 = 64 * 1024
	argonIterations  uint32 = 3
	argonParallelism uint8  = 2
	argonSaltLen            = 16
	argonKeyLen      uint32 = 32
)

// HashPassword returns an argon2id hash in PHC string format.
func HashPassword(plaintext string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, argonIterations, argonMemory, argonParallelism, argonKeyLen)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory, argonIterations, argonParallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// VerifyPassword checks plaintext against a stored PHC hash using the
// settings recorded in the hash itself.
func VerifyPassword(hash, plaintext string) (bool, error) {
	memory, iterations, parallelism, salt, key, err := decodePasswordHash(hash)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(plaintext), salt, iterations, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func decodePasswordHash(hash string) (memory, iterations uint32, parallelism uint8, salt, key []byte, err error) {
	fail := func(msg string) (uint32, uint32, uint8, []byte, []byte, error) {
		return 0, 0, 0, nil, nil, fmt.Errorf("%w: %s", errBadPasswordHash, msg)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return fail("not an argon2id PHC string")
	}
	if parts[2] != "v=19" {
		return fail("unsupported argon2 version")
	}

	var seen int
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fail("bad cost parameter")
		}
		switch k {
		case "m":
			n, perr := strconv.ParseUint(v, 10, 32)
			if perr != nil {
				return fail("bad memory parameter")
			}
			memory = uint32(n)
		case "t":
			n, perr := strconv.ParseUint(v, 10, 32)
			if perr != nil {
				return fail("bad time parameter")
			}
			iterations = uint32(n)
		case "p":
			n, perr := strconv.ParseUint(v, 10, 8)
			if perr != nil {
				return fail("bad parallelism parameter")
			}
			parallelism = uint8(n)
		default:
			return fail("unknown cost parameter")
		}
		seen++
	}
	if seen != 3 {
		return fail("missing cost parameters")
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return fail("bad salt")
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return fail("bad key")
	}

	return memory, iterations, parallelism, salt, key, nil
}
