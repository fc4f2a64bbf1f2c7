package split

import (
	"math"
	"testing"

	"github.com/divvyhq/divvy/internal/apperr"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func sum(shares []Share) float64 {
	total := 0.0
	for _, s := range shares {
		total += s.Amount
	}
	return total
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name      string
		total     float64
		members   []string
		wantErr   bool
		wantEach  float64
		wantSum   float64 // documented drift: each share rounds independently
	}{
		{
			name:     "even division",
			total:    90.0,
			members:  []string{"a", "b", "c"},
			wantEach: 30.0,
			wantSum:  90.0,
		},
		{
			name:    "rounding drift is not redistributed",
			total:   100.0,
			members: []string{"a", "b", "c"},
			// 100/3 = 33.333... rounds to 33.33 per share; sum is 99.99.
			wantEach: 33.33,
			wantSum:  99.99,
		},
		{
			name:     "half cent rounds up",
			total:    0.05,
			members:  []string{"a", "b"},
			wantEach: 0.03, // 0.025 half-up
			wantSum:  0.06,
		},
		{
			name:     "single member takes the whole total",
			total:    42.50,
			members:  []string{"solo"},
			wantEach: 42.50,
			wantSum:  42.50,
		},
		{
			name:    "no members",
			total:   10.0,
			members: nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Equal(tt.total, tt.members)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Equal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperr.Is(err, apperr.KindValidation) {
					t.Errorf("error kind = %q, want validation", apperr.KindOf(err))
				}
				return
			}
			if len(shares) != len(tt.members) {
				t.Fatalf("share count = %d, want %d", len(shares), len(tt.members))
			}
			for _, s := range shares {
				if !almostEqual(s.Amount, tt.wantEach) {
					t.Errorf("share for %s = %v, want %v", s.UserID, s.Amount, tt.wantEach)
				}
			}
			if got := sum(shares); !almostEqual(got, tt.wantSum) {
				t.Errorf("sum of shares = %v, want %v", got, tt.wantSum)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	t.Run("shares follow percentages", func(t *testing.T) {
		shares, err := Percentage(200.0, []PercentEntry{
			{UserID: "a", Percentage: 50},
			{UserID: "b", Percentage: 30},
			{UserID: "c", Percentage: 20},
		})
		if err != nil {
			t.Fatalf("Percentage() error = %v", err)
		}
		want := map[string]float64{"a": 100.0, "b": 60.0, "c": 40.0}
		for _, s := range shares {
			if !almostEqual(s.Amount, want[s.UserID]) {
				t.Errorf("share for %s = %v, want %v", s.UserID, s.Amount, want[s.UserID])
			}
		}
		if got := sum(shares); !almostEqual(got, 200.0) {
			t.Errorf("sum of shares = %v, want 200.0", got)
		}
	})

	t.Run("sum within rounding tolerance when percentages total 100", func(t *testing.T) {
		shares, err := Percentage(100.0, []PercentEntry{
			{UserID: "a", Percentage: 33.33},
			{UserID: "b", Percentage: 33.33},
			{UserID: "c", Percentage: 33.34},
		})
		if err != nil {
			t.Fatalf("Percentage() error = %v", err)
		}
		if got := sum(shares); math.Abs(got-100.0) > 0.03 {
			t.Errorf("sum of shares = %v, want within 0.03 of 100.0", got)
		}
	})

	t.Run("percentages not summing to 100 are accepted", func(t *testing.T) {
		shares, err := Percentage(100.0, []PercentEntry{
			{UserID: "a", Percentage: 10},
			{UserID: "b", Percentage: 10},
		})
		if err != nil {
			t.Fatalf("Percentage() error = %v", err)
		}
		if got := sum(shares); !almostEqual(got, 20.0) {
			t.Errorf("sum of shares = %v, want 20.0", got)
		}
	})

	t.Run("empty input fails validation", func(t *testing.T) {
		_, err := Percentage(100.0, nil)
		if !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("error kind = %q, want validation", apperr.KindOf(err))
		}
	})
}

func TestCustom(t *testing.T) {
	t.Run("amounts used verbatim", func(t *testing.T) {
		shares, err := Custom([]AmountEntry{
			{UserID: "a", Amount: 12.34},
			{UserID: "b", Amount: 7.66},
		})
		if err != nil {
			t.Fatalf("Custom() error = %v", err)
		}
		if shares[0].Amount != 12.34 || shares[1].Amount != 7.66 {
			t.Errorf("shares = %+v, want verbatim amounts", shares)
		}
	})

	t.Run("amounts not matching any total are accepted", func(t *testing.T) {
		shares, err := Custom([]AmountEntry{{UserID: "a", Amount: 999.99}})
		if err != nil {
			t.Fatalf("Custom() error = %v", err)
		}
		if len(shares) != 1 {
			t.Fatalf("share count = %d, want 1", len(shares))
		}
	})

	t.Run("empty input fails validation", func(t *testing.T) {
		_, err := Custom(nil)
		if !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("error kind = %q, want validation", apperr.KindOf(err))
		}
	})
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.004, 1.00},
		{33.333333, 33.33},
		{0.125, 0.13}, // half-up, exactly representable
		{0.375, 0.38},
		{-1.2, -1.2},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); !almostEqual(got, tt.want) {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
