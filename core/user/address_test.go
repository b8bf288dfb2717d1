package user

import (
	"strings"
	"testing"
)

func TestChecksumAddress(t *testing.T) {
	// EIP-55 test vectors
	vectors := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}

	tests := []struct {
		name    string
		addr    string
		want    string
		wantErr error
	}{
		{name: "empty", addr: "", wantErr: ErrInvalidAddress},
		{name: "no prefix", addr: strings.TrimPrefix(vectors[0], "0x") + "00", wantErr: ErrInvalidAddress},
		{name: "too short", addr: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeA", wantErr: ErrInvalidAddress},
		{name: "not hex", addr: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAzz", wantErr: ErrInvalidAddress},
		{name: "bad checksum", addr: "0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", wantErr: ErrInvalidAddress},
		{name: "surrounding spaces", addr: "  " + vectors[1] + " ", want: vectors[1]},
	}
	for _, v := range vectors {
		tests = append(tests,
			struct {
				name    string
				addr    string
				want    string
				wantErr error
			}{name: "checksummed " + v, addr: v, want: v},
			struct {
				name    string
				addr    string
				want    string
				wantErr error
			}{name: "lower " + v, addr: strings.ToLower(v), want: v},
			struct {
				name    string
				addr    string
				want    string
				wantErr error
			}{name: "upper " + v, addr: "0x" + strings.ToUpper(v[2:]), want: v},
		)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChecksumAddress(tt.addr)
			if err != tt.wantErr {
				t.Fatalf("ChecksumAddress() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ChecksumAddress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelForXP(t *testing.T) {
	levels := []Level{{Number: 1, MinXP: 0}, {Number: 2, MinXP: 100}, {Number: 3, MinXP: 300}}

	tests := []struct {
		xp   int
		want int
	}{
		{xp: 0, want: 1},
		{xp: 99, want: 1},
		{xp: 100, want: 2},
		{xp: 299, want: 2},
		{xp: 5000, want: 3},
	}
	for _, tt := range tests {
		if got := LevelForXP(levels, tt.xp); got.Number != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got.Number, tt.want)
		}
	}
	if got := LevelForXP(nil, 10); got != (Level{}) {
		t.Errorf("LevelForXP(nil) = %v, want zero Level", got)
	}
}
