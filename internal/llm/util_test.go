package llm

import (
	"testing"
)

const recJSON = `{"reasoning": "Core gaps first", "recommendations": [{"skill_name": "Kafka", "priority": "High"}]}`

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"json fence", "```json\n" + recJSON + "\n```", recJSON},
		{"bare fence", "```\n" + recJSON + "\n```", recJSON},
		{"fence with other language tag", "```javascript\n" + recJSON + "\n```", recJSON},
		{"plain object", recJSON, recJSON},
		{"preamble", "Based on the role profile, here are my suggestions:\n\n" + recJSON, recJSON},
		{"preamble and trailer", "Sure!\n" + recJSON + "\nLet me know if you need more.", recJSON},
		{"fenced array with trailer", "```json\n[{\"skill_name\": \"dbt\"}]\n```\nHope this helps", `[{"skill_name": "dbt"}]`},
		{"refusal", "  I cannot help with that.  ", "I cannot help with that."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSONBlock(tt.input); got != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"object after text", `Recommendations: {"reasoning": "x"} done`, `{"reasoning": "x"}`, true},
		{"nested object and array", `{"recommendations": [{"learning_path": ["a", "b"]}]}`, `{"recommendations": [{"learning_path": ["a", "b"]}]}`, true},
		{"array before object", `[{"skill_name": "Go"}] then {"b": 2}`, `[{"skill_name": "Go"}]`, true},
		{"braces inside strings", `{"description": "Use {placeholders} and ]brackets["}`, `{"description": "Use {placeholders} and ]brackets["}`, true},
		{"escaped quote inside string", `{"description": "say \"hi}\" now"} tail`, `{"description": "say \"hi}\" now"}`, true},
		{"unterminated", `{"recommendations": [1, 2`, "", false},
		{"no brackets", "plain text", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ExtractJSON() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	if got := extractBalanced("not json", '{', '}'); got != "" {
		t.Errorf("expected empty result for text not starting with the open bracket, got %q", got)
	}
	if got := extractBalanced(`[[1, 2], [3]] rest`, '[', ']'); got != `[[1, 2], [3]]` {
		t.Errorf("extractBalanced() = %q", got)
	}
}
