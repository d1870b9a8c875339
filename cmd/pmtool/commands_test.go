package main

import (
	"flag"
	"io"
	"slices"
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantPos    []string
		wantC      float64
		wantOut    string
		wantFailed bool
	}{
		{"flags first", []string{"-c", "5", "-o", "a.off", "cow.offpm"}, []string{"cow.offpm"}, 5, "a.off", false},
		{"flags last", []string{"cow.offpm", "-c", "5"}, []string{"cow.offpm"}, 5, "", false},
		{"flags between", []string{"cow.off", "-o", "x.stl", "1", "2"}, []string{"cow.off", "1", "2"}, -1, "x.stl", false},
		{"negative numbers", []string{"cow.off", "0", "0", "5", "0", "0", "-1"}, []string{"cow.off", "0", "0", "5", "0", "0", "-1"}, -1, "", false},
		{"negative then flag", []string{"cow.off", "-0.5", "-c", "3", "-1e3"}, []string{"cow.off", "-0.5", "-1e3"}, 3, "", false},
		{"terminator", []string{"-c", "2", "--", "-o", "cow.off"}, []string{"-o", "cow.off"}, 2, "", false},
		{"no positionals", []string{"-c", "2"}, nil, 2, "", false},
		{"unknown flag", []string{"cow.off", "-x"}, nil, -1, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("lod", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			c := fs.Float64("c", -1, "")
			out := fs.String("o", "", "")

			pos, err := parseArgs(fs, tt.args)
			if tt.wantFailed {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs failed: %v", err)
			}
			if !slices.Equal(pos, tt.wantPos) {
				t.Errorf("positionals = %q, want %q", pos, tt.wantPos)
			}
			if *c != tt.wantC {
				t.Errorf("-c = %g, want %g", *c, tt.wantC)
			}
			if *out != tt.wantOut {
				t.Errorf("-o = %q, want %q", *out, tt.wantOut)
			}
		})
	}
}

func TestIsFlag(t *testing.T) {
	for s, want := range map[string]bool{
		"-c":    true,
		"--out": true,
		"-1":    false,
		"-0.25": false,
		"-":     false,
		"cow":   false,
		"-inf":  false,
	} {
		if got := isFlag(s); got != want {
			t.Errorf("isFlag(%q) = %v, want %v", s, got, want)
		}
	}
}
