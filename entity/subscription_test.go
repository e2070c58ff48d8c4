package entity

import (
	"testing"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{
			name:  "plain time",
			input: "08:30",
			want:  TimeOfDay{Hour: 8, Minute: 30},
		},
		{
			name:  "midnight",
			input: "00:00",
			want:  TimeOfDay{Hour: 0, Minute: 0},
		},
		{
			name:  "end of day",
			input: "23:59",
			want:  TimeOfDay{Hour: 23, Minute: 59},
		},
		{
			name:  "bare hour",
			input: "7",
			want:  TimeOfDay{Hour: 7, Minute: 0},
		},
		{
			name:  "surrounding whitespace",
			input: " 12:05 ",
			want:  TimeOfDay{Hour: 12, Minute: 5},
		},
		{
			name:    "hour out of range",
			input:   "24:00",
			wantErr: true,
		},
		{
			name:    "minute out of range",
			input:   "10:60",
			wantErr: true,
		},
		{
			name:    "negative hour",
			input:   "-1:30",
			wantErr: true,
		},
		{
			name:    "not a number",
			input:   "noon",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTimeOfDay(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	if got := (TimeOfDay{Hour: 8, Minute: 5}).String(); got != "08:05" {
		t.Errorf("String() = %q, want %q", got, "08:05")
	}
}

func TestSubscriptionValidate(t *testing.T) {
	sub := &Subscription{
		ActorID:  7,
		Time:     TimeOfDay{Hour: 8, Minute: 30},
		Timezone: "Europe/Berlin",
		Home:     HomeLocation{Lat: 52.52, Lon: 13.405, Label: "Berlin"},
	}
	if err := sub.Validate(); err != nil {
		t.Errorf("Validate() on a valid subscription: %v", err)
	}

	bad := *sub
	bad.Timezone = "Mars/Olympus"
	if err := bad.Validate(); err == nil {
		t.Error("Validate() should reject an unknown timezone")
	}

	bad = *sub
	bad.Home.Lat = 123
	if err := bad.Validate(); err == nil {
		t.Error("Validate() should reject an out-of-range latitude")
	}
}
