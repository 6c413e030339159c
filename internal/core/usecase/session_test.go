package usecase

import (
	"testing"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
)

func TestSessionMatchesOnlyAfterRecord(t *testing.T) {
	session := NewSession()
	fp := domain.SearchFingerprint{Query: "electric bicycle", Origin: "China", Destination: "United States"}

	if session.Matches(fp) {
		t.Fatalf("fresh session must not match anything")
	}
	// The zero fingerprint must not match before any success either.
	if session.Matches(domain.SearchFingerprint{}) {
		t.Fatalf("zero fingerprint matched on fresh session")
	}

	session.RecordSuccess(fp)
	if !session.Matches(fp) {
		t.Fatalf("expected recorded fingerprint to match")
	}
	if session.Matches(domain.SearchFingerprint{Query: "electric bicycle", Origin: "Vietnam", Destination: "United States"}) {
		t.Fatalf("different origin must not match")
	}
}

func TestSessionOverwritesOnEachSuccess(t *testing.T) {
	session := NewSession()
	first := domain.SearchFingerprint{HTSCode: "8711.60.00", Destination: "United States"}
	second := domain.SearchFingerprint{HTSCode: "8711.60.00", Destination: "Germany"}

	session.RecordSuccess(first)
	session.RecordSuccess(second)

	if session.Matches(first) {
		t.Fatalf("old fingerprint still matches after overwrite")
	}
	if !session.Matches(second) {
		t.Fatalf("latest fingerprint must match")
	}
}
