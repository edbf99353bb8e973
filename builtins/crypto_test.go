package builtins

import (
	"runtime"
	"strings"
	"testing"

	"luax/types"
)

func cryptoArgs(ss ...string) []types.Value {
	vals := make([]types.Value, len(ss))
	for i, s := range ss {
		vals[i] = types.NewStr(s)
	}
	return vals
}

func TestRegisterCryptoBuiltins(t *testing.T) {
	r := NewRegistry()
	if r.Has("crypto.sha256") {
		t.Fatal("crypto builtins must be opt-in")
	}
	r.RegisterCryptoBuiltins()
	for _, name := range []string{
		"crypto.sha256", "crypto.ripemd160",
		"crypto.argon2", "crypto.argon2_verify",
		"crypto.crypt", "crypto.crypt_verify",
	} {
		if !r.Has(name) {
			t.Errorf("missing %q after RegisterCryptoBuiltins", name)
		}
	}

	g := types.NewTable()
	r.Install(g)
	lib, ok := g.GetField("crypto").(*types.Table)
	if !ok {
		t.Fatalf("crypto = %T, want a table", g.GetField("crypto"))
	}
	if _, ok := lib.GetField("sha256").(*types.Native); !ok {
		t.Error("crypto.sha256 not installed")
	}
}

func TestSha256KnownValues(t *testing.T) {
	ctx := types.NewContext()
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}
	for _, tt := range tests {
		res := builtinCryptoSha256(ctx, cryptoArgs(tt.in))
		if res.IsError() {
			t.Fatalf("sha256(%q) fault: %s", tt.in, res.Err)
		}
		if got := res.First().String(); got != tt.want {
			t.Errorf("sha256(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if res := builtinCryptoSha256(ctx, nil); !res.IsError() {
		t.Error("sha256 with no argument must fault")
	}
}

func TestRipemd160KnownValues(t *testing.T) {
	ctx := types.NewContext()
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "8eb208f7e05d987a9b044a8e98c6b087f15a0bfc"},
		{"", "9c1185a5c5e9fc54612808977ee8f548b2258d31"},
	}
	for _, tt := range tests {
		res := builtinCryptoRipemd160(ctx, cryptoArgs(tt.in))
		if res.IsError() {
			t.Fatalf("ripemd160(%q) fault: %s", tt.in, res.Err)
		}
		if got := res.First().String(); got != tt.want {
			t.Errorf("ripemd160(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArgon2RoundTrip(t *testing.T) {
	ctx := types.NewContext()

	res := builtinCryptoArgon2(ctx, cryptoArgs("password", "somesalt"))
	if res.IsError() {
		t.Fatalf("argon2 fault: %s", res.Err)
	}
	hash := res.First().String()
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=2$") {
		t.Errorf("unexpected hash shape %q", hash)
	}

	// a fixed salt makes the hash reproducible
	res = builtinCryptoArgon2(ctx, cryptoArgs("password", "somesalt"))
	if res.First().String() != hash {
		t.Error("same password and salt produced different hashes")
	}

	verify := func(a, b string) bool {
		res := builtinCryptoArgon2Verify(ctx, cryptoArgs(a, b))
		if res.IsError() {
			t.Fatalf("argon2_verify fault: %s", res.Err)
		}
		return res.First().Equal(types.True)
	}
	if !verify(hash, "password") {
		t.Error("verify(hash, password) = false")
	}
	if verify(hash, "wrong") {
		t.Error("verify(hash, wrong) = true")
	}
	// the arguments are accepted in either order
	if !verify("password", hash) {
		t.Error("verify(password, hash) = false")
	}
}

func TestArgon2GeneratedSalt(t *testing.T) {
	ctx := types.NewContext()
	a := builtinCryptoArgon2(ctx, cryptoArgs("password"))
	b := builtinCryptoArgon2(ctx, cryptoArgs("password"))
	if a.IsError() || b.IsError() {
		t.Fatalf("argon2 fault: %v %v", a.Err, b.Err)
	}
	if a.First().Equal(b.First()) {
		t.Error("two generated salts produced the same hash")
	}

	res := builtinCryptoArgon2Verify(ctx, cryptoArgs(a.First().String(), "password"))
	if !res.First().Equal(types.True) {
		t.Error("generated-salt hash failed to verify")
	}
}

func TestArgon2SaltTooShort(t *testing.T) {
	ctx := types.NewContext()
	res := builtinCryptoArgon2(ctx, cryptoArgs("password", "short"))
	if !res.IsError() {
		t.Fatal("expected a fault for a short salt")
	}
	if !strings.Contains(res.Err.String(), "salt too short") {
		t.Errorf("fault = %s", res.Err)
	}
}

func TestArgon2VerifyMalformed(t *testing.T) {
	ctx := types.NewContext()
	res := builtinCryptoArgon2Verify(ctx, cryptoArgs("$argon2id$garbage", "password"))
	if !res.IsError() {
		t.Fatal("expected a fault for a malformed hash")
	}
}

func TestCryptKnownValue(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("crypt(3) is unavailable on windows")
	}

	// known good DES value from ToastStunt
	ctx := types.NewContext()
	res := builtinCryptoCrypt(ctx, cryptoArgs("foobar", "SA"))
	if res.IsError() {
		t.Fatalf("crypt fault: %s", res.Err)
	}
	expected := "SAEmC5UwrAl2A"
	if got := res.First().String(); got != expected {
		t.Errorf("crypt('foobar', 'SA') = %q, expected %q", got, expected)
	}
}

func TestCryptSha512RoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("crypt(3) is unavailable on windows")
	}

	ctx := types.NewContext()
	res := builtinCryptoCrypt(ctx, cryptoArgs("secret", "$6$0123456789abcdef"))
	if res.IsError() {
		t.Fatalf("crypt fault: %s", res.Err)
	}
	hash := res.First().String()
	if !strings.HasPrefix(hash, "$6$") {
		t.Fatalf("hash %q lacks the SHA-512 prefix", hash)
	}

	// rehashing with the stored hash as the salt reproduces it
	res = builtinCryptoCrypt(ctx, cryptoArgs("secret", hash))
	if res.First().String() != hash {
		t.Error("rehash with the stored hash did not reproduce it")
	}

	res = builtinCryptoCryptVerify(ctx, cryptoArgs("secret", hash))
	if !res.First().Equal(types.True) {
		t.Error("crypt_verify(secret, hash) = false")
	}
	res = builtinCryptoCryptVerify(ctx, cryptoArgs("wrong", hash))
	if !res.First().Equal(types.False) {
		t.Error("crypt_verify(wrong, hash) = true")
	}
}

func TestCryptGeneratesSalt(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("crypt(3) is unavailable on windows")
	}

	ctx := types.NewContext()
	res := builtinCryptoCrypt(ctx, cryptoArgs("secret"))
	if res.IsError() {
		t.Fatalf("crypt fault: %s", res.Err)
	}
	if !strings.HasPrefix(res.First().String(), "$6$") {
		t.Errorf("generated hash %q is not SHA-512 crypt", res.First())
	}
}
