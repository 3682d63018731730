package cache

import (
	"testing"
	"time"
)

func TestGetSetRoundtrip(t *testing.T) {
	c := New(DefaultTTL)
	c.Set("k", "v")

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.(string) != "v" {
		t.Errorf("expected v, got %v", got)
	}
}

func TestExpiredEntryNeverReturned(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewWithClock(5*time.Minute, func() time.Time { return now })

	c.Set("k", "v")

	now = now.Add(5*time.Minute - time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired too early")
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry to be dropped")
	}
}

func TestDeleteRemovesFreshEntry(t *testing.T) {
	c := New(DefaultTTL)
	c.Set("k", "v")
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestClear(t *testing.T) {
	c := New(DefaultTTL)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss after clear")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected miss after clear")
	}
}

func TestKeyNormalization(t *testing.T) {
	tests := []struct {
		op       string
		input    string
		expected string
	}{
		{"pergunta", "Qual o meu remédio?", "pergunta_qual_o_meu_remédio?"},
		{"intencao_criar", "  Adicionar   Dipirona  ", "intencao_criar_adicionar_dipirona"},
		{"medicamento", "tomar\tparacetamol\nhoje", "medicamento_tomar_paracetamol_hoje"},
	}
	for _, tt := range tests {
		if got := Key(tt.op, tt.input); got != tt.expected {
			t.Errorf("Key(%q, %q) = %q, want %q", tt.op, tt.input, got, tt.expected)
		}
	}
}
