package store

import (
	"context"
	"testing"

	"github.com/lmoreira/acervo/internal/db"
)

func TestGetSessionSecretStable(t *testing.T) {
	testDB := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetSessionSecret(ctx, testDB)
	if err != nil {
		t.Fatalf("GetSessionSecret: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first))
	}

	second, err := GetSessionSecret(ctx, testDB)
	if err != nil {
		t.Fatalf("GetSessionSecret (second): %v", err)
	}
	if first != second {
		t.Error("secret changed between calls")
	}
}

func TestEnsureAdminPassphrase(t *testing.T) {
	testDB := db.NewTestDB(t)
	ctx := context.Background()

	passphrase, err := EnsureAdminPassphrase(ctx, testDB)
	if err != nil {
		t.Fatalf("EnsureAdminPassphrase: %v", err)
	}
	if passphrase == "" {
		t.Fatal("expected generated passphrase on first run")
	}

	ok, err := VerifyAdminPassphrase(ctx, testDB, passphrase)
	if err != nil {
		t.Fatalf("VerifyAdminPassphrase: %v", err)
	}
	if !ok {
		t.Error("generated passphrase does not verify")
	}

	ok, err = VerifyAdminPassphrase(ctx, testDB, "wrong")
	if err != nil {
		t.Fatalf("VerifyAdminPassphrase (wrong): %v", err)
	}
	if ok {
		t.Error("wrong passphrase verified")
	}

	// Second run must not regenerate.
	again, err := EnsureAdminPassphrase(ctx, testDB)
	if err != nil {
		t.Fatalf("EnsureAdminPassphrase (second): %v", err)
	}
	if again != "" {
		t.Error("passphrase regenerated on second run")
	}
}

func TestVerifyAdminPassphraseWithoutHash(t *testing.T) {
	testDB := db.NewTestDB(t)

	ok, err := VerifyAdminPassphrase(context.Background(), testDB, "anything")
	if err != nil {
		t.Fatalf("VerifyAdminPassphrase: %v", err)
	}
	if ok {
		t.Error("verification succeeded with no stored hash")
	}
}

func TestImageRoundTrip(t *testing.T) {
	testDB := db.NewTestDB(t)
	ctx := context.Background()

	data := []byte{0xff, 0xd8, 0xff, 0xe0, 0x01, 0x02}
	id, err := SaveImage(ctx, testDB, data, "image/jpeg")
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	got, mime, err := GetImage(ctx, testDB, id)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", mime)
	}
	if string(got) != string(data) {
		t.Error("image bytes corrupted")
	}

	if ref := ImageRef(id); ref != "/images/"+id {
		t.Errorf("unexpected ref: %q", ref)
	}
}

func TestGetImageUnknownID(t *testing.T) {
	testDB := db.NewTestDB(t)

	data, mime, err := GetImage(context.Background(), testDB, "missing")
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if data != nil || mime != "" {
		t.Errorf("expected nil result, got %d bytes %q", len(data), mime)
	}
}

func TestDeleteImage(t *testing.T) {
	testDB := db.NewTestDB(t)
	ctx := context.Background()

	id, err := SaveImage(ctx, testDB, []byte{1, 2, 3}, "image/png")
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if err := DeleteImage(ctx, testDB, id); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}

	data, _, err := GetImage(ctx, testDB, id)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if data != nil {
		t.Error("image still present after delete")
	}

	if err := DeleteImage(ctx, testDB, "missing"); err != nil {
		t.Errorf("deleting unknown id: %v", err)
	}
}
