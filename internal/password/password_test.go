package password

import "testing"

func TestHashRoundTrip(t *testing.T) {
	hash, err := Hash("s3cret-pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-pw" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !Verify("s3cret-pw", hash) {
		t.Fatal("expected matching password to verify")
	}
	if Verify("other-pw", hash) {
		t.Fatal("expected non-matching password to fail")
	}
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("same-input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := Hash("same-input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same input must differ")
	}
	if !Verify("same-input", first) || !Verify("same-input", second) {
		t.Fatal("both salted hashes must verify against the input")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	if Verify("anything", "not-a-bcrypt-hash") {
		t.Fatal("malformed hash must verify as false")
	}
	if Verify("anything", "") {
		t.Fatal("empty hash must verify as false")
	}
}
