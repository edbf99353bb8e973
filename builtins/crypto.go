package builtins

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	gocrypt "github.com/amoghe/go-crypt"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/ripemd160"

	"luax/types"
)

const (
	argonTime    = uint32(1)
	argonMemory  = uint32(64 * 1024)
	argonThreads = uint8(2)
	argonKeyLen  = uint32(32)
)

// RegisterCryptoBuiltins adds the crypto host-extension library: digest
// and password-hashing natives. It is opt-in; the standard install does
// not include it.
func (r *Registry) RegisterCryptoBuiltins() {
	r.Register("crypto.sha256", builtinCryptoSha256)
	r.Register("crypto.ripemd160", builtinCryptoRipemd160)
	r.Register("crypto.argon2", builtinCryptoArgon2)
	r.Register("crypto.argon2_verify", builtinCryptoArgon2Verify)
	r.Register("crypto.crypt", builtinCryptoCrypt)
	r.Register("crypto.crypt_verify", builtinCryptoCryptVerify)
}

// saltAlphabet is the crypt(3) salt character set
const saltAlphabet = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// randomCryptSalt builds a SHA-512 crypt salt string
func randomCryptSalt() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	chars := make([]byte, len(raw))
	for i, b := range raw {
		chars[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return "$6$" + string(chars), nil
}

// builtinCryptoCrypt hashes a string in crypt(3) style. The salt selects
// the algorithm by prefix ($1$ MD5, $5$ SHA-256, $6$ SHA-512); without
// one, a fresh SHA-512 salt is generated. Passing a previous full hash as
// the salt reproduces that hash for matching input.
// crypto.crypt(s [, salt]) -> str
func builtinCryptoCrypt(ctx *types.Context, args []types.Value) types.Result {
	s, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "crypt", "string")
	}
	salt, ok := optStr(args, 2, "")
	if !ok {
		return argFault(ctx, args, 2, "crypt", "string")
	}
	if salt == "" {
		var err error
		salt, err = randomCryptSalt()
		if err != nil {
			return fault(ctx, "bad argument #2 to 'crypt' (salt generation failed)")
		}
	}
	hash, err := gocrypt.Crypt(s, salt)
	if err != nil {
		return fault(ctx, "bad argument #2 to 'crypt' (unsupported salt)")
	}
	return types.Ok(types.NewStr(hash))
}

// builtinCryptoCryptVerify checks a string against a crypt(3) hash by
// re-hashing with the stored hash as the salt and comparing in constant
// time.
// crypto.crypt_verify(s, hash) -> bool
func builtinCryptoCryptVerify(ctx *types.Context, args []types.Value) types.Result {
	s, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "crypt_verify", "string")
	}
	stored, ok := argStr(args, 2)
	if !ok {
		return argFault(ctx, args, 2, "crypt_verify", "string")
	}
	recomputed, err := gocrypt.Crypt(s, stored)
	if err != nil {
		return fault(ctx, "bad argument #2 to 'crypt_verify' (malformed hash)")
	}
	match := subtle.ConstantTimeCompare([]byte(recomputed), []byte(stored)) == 1
	return types.Ok(types.NewBool(match))
}

// builtinCryptoSha256 returns the hex SHA-256 digest
// crypto.sha256(s) -> str
func builtinCryptoSha256(ctx *types.Context, args []types.Value) types.Result {
	s, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "sha256", "string")
	}
	sum := sha256.Sum256([]byte(s))
	return types.Ok(types.NewStr(hex.EncodeToString(sum[:])))
}

// builtinCryptoRipemd160 returns the hex RIPEMD-160 digest
// crypto.ripemd160(s) -> str
func builtinCryptoRipemd160(ctx *types.Context, args []types.Value) types.Result {
	s, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "ripemd160", "string")
	}
	h := ripemd160.New()
	h.Write([]byte(s))
	return types.Ok(types.NewStr(hex.EncodeToString(h.Sum(nil))))
}

// builtinCryptoArgon2 hashes a password with argon2id, generating a
// random 16-byte salt when none is given. Salts must be at least 8 bytes.
// crypto.argon2(password [, salt]) -> str
func builtinCryptoArgon2(ctx *types.Context, args []types.Value) types.Result {
	password, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "argon2", "string")
	}
	var salt []byte
	if !types.IsNil(arg(args, 1)) {
		s, ok := argStr(args, 2)
		if !ok {
			return argFault(ctx, args, 2, "argon2", "string")
		}
		if len(s) < 8 {
			return fault(ctx, "bad argument #2 to 'argon2' (salt too short)")
		}
		salt = []byte(s)
	} else {
		salt = make([]byte, 16)
		if _, err := rand.Read(salt); err != nil {
			return fault(ctx, "cannot generate salt: %s", err)
		}
	}
	h := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	encoded := fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(h),
	)
	return types.Ok(types.NewStr(encoded))
}

// parseArgon2Hash splits a $argon2id$v=19$m=..,t=..,p=..$salt$hash string
func parseArgon2Hash(encoded string) (m, t uint32, p uint8, salt, hash []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed argon2 hash")
	}
	params := strings.Split(parts[3], ",")
	if len(params) != 3 {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed argon2 hash")
	}
	m64, err := strconv.ParseUint(strings.TrimPrefix(params[0], "m="), 10, 32)
	if err != nil {
		return 0, 0, 0, nil, nil, err
	}
	t64, err := strconv.ParseUint(strings.TrimPrefix(params[1], "t="), 10, 32)
	if err != nil {
		return 0, 0, 0, nil, nil, err
	}
	p64, err := strconv.ParseUint(strings.TrimPrefix(params[2], "p="), 10, 8)
	if err != nil {
		return 0, 0, 0, nil, nil, err
	}
	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, err
	}
	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, err
	}
	return uint32(m64), uint32(t64), uint8(p64), salt, hash, nil
}

// builtinCryptoArgon2Verify checks a password against an encoded hash,
// accepting the two arguments in either order.
// crypto.argon2_verify(hash, password) -> bool
func builtinCryptoArgon2Verify(ctx *types.Context, args []types.Value) types.Result {
	hashStr, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "argon2_verify", "string")
	}
	password, ok := argStr(args, 2)
	if !ok {
		return argFault(ctx, args, 2, "argon2_verify", "string")
	}
	if !strings.HasPrefix(hashStr, "$argon2") && strings.HasPrefix(password, "$argon2") {
		hashStr, password = password, hashStr
	}
	m, t, p, salt, expected, err := parseArgon2Hash(hashStr)
	if err != nil {
		return fault(ctx, "bad argument #1 to 'argon2_verify' (malformed hash)")
	}
	actual := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(expected)))
	return types.Ok(types.NewBool(subtle.ConstantTimeCompare(actual, expected) == 1))
}
