package discovery

import (
	"testing"

	"solana-token-sentinel/internal/solana"
)

func TestKeywordClassifier_Match(t *testing.T) {
	classifier := NewKeywordClassifier(nil)

	tests := []struct {
		name  string
		notif solana.LogNotification
		want  bool
	}{
		{
			name: "initialize2 instruction",
			notif: solana.LogNotification{
				Signature: "sig1",
				Logs: []string{
					"Program 675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8 invoke [1]",
					"Program log: initialize2: InitializeInstruction2",
				},
			},
			want: true,
		},
		{
			name: "mixed case keyword",
			notif: solana.LogNotification{
				Signature: "sig2",
				Logs:      []string{"Program log: Instruction: Create"},
			},
			want: true,
		},
		{
			name: "no keyword",
			notif: solana.LogNotification{
				Signature: "sig3",
				Logs:      []string{"Program log: Instruction: Swap", "Program log: ray_log: A8=="},
			},
			want: false,
		},
		{
			name: "keyword split across lines does not match",
			notif: solana.LogNotification{
				Signature: "sig4",
				Logs:      []string{"Program log: ini", "Program log: tialize"},
			},
			want: false,
		},
		{
			name: "failed transaction never matches",
			notif: solana.LogNotification{
				Signature: "sig5",
				Logs:      []string{"Program log: initialize2"},
				Err:       map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}},
			},
			want: false,
		},
		{
			name:  "empty logs",
			notif: solana.LogNotification{Signature: "sig6"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.Match(tt.notif); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeywordClassifier_CustomKeywords(t *testing.T) {
	classifier := NewKeywordClassifier([]string{"MintTo"})

	hit := solana.LogNotification{
		Signature: "sig1",
		Logs:      []string{"Program log: Instruction: MintTo"},
	}
	if !classifier.Match(hit) {
		t.Error("expected custom keyword to match")
	}

	// Default keywords must not apply once a custom set is given
	miss := solana.LogNotification{
		Signature: "sig2",
		Logs:      []string{"Program log: initialize2"},
	}
	if classifier.Match(miss) {
		t.Error("default keywords should not match a custom classifier")
	}
}
