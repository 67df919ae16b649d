// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/wbtcsuite/wbtcd/chaincfg"
	"github.com/wbtcsuite/wbtcd/checkpoint"
)

const (
	testHashA = "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"
	testHashB = "00000000839a8e6886ab5951d76f411475428afc90947ee320161bbf18eb6048"
	testHashC = "000000006a625f06636b8bb6ac7b960a8d03705d1ace08b1a19da3fdcc99ddbd"

	// otherPrivKey is a valid key that is not the regnet checkpoint key.
	otherPrivKey = "0101010101010101010101010101010101010101010101010101010101010101"
)

// ctlHarness runs commands against a regnet checkpoint database in a
// temporary application directory.
type ctlHarness struct {
	t       *testing.T
	appData string
	dbType  string
}

func newCtlHarness(t *testing.T, dbType string) *ctlHarness {
	return &ctlHarness{t: t, appData: t.TempDir(), dbType: dbType}
}

// run executes the command line with the provided extra flags and returns the
// command output.
func (h *ctlHarness) run(extraFlags []string, args ...string) (string, error) {
	h.t.Helper()

	cmdLine := []string{"-A", h.appData, "--regnet", "--nofilelogging",
		"--dbtype=" + h.dbType}
	cmdLine = append(cmdLine, extraFlags...)
	cmdLine = append(cmdLine, "--")
	cmdLine = append(cmdLine, args...)
	cfg, rest, err := loadConfig(cmdLine)
	if err != nil {
		h.t.Fatalf("unable to load config %v: %v", cmdLine, err)
	}

	var out bytes.Buffer
	err = runCommand(cfg, rest, &out)
	return out.String(), err
}

// mustRun is like run but fails the test on error.
func (h *ctlHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(nil, args...)
	if err != nil {
		h.t.Fatalf("%v: unexpected error: %v", args, err)
	}
	return out
}

// signedCheckpoint returns a checkpoint signed with the provided hex key.
func signedCheckpoint(t *testing.T, height int64, hashStr, keyHex string) checkpoint.Checkpoint {
	t.Helper()
	hash, err := chainhash.NewHashFromStr(hashStr)
	if err != nil {
		t.Fatalf("bad hash: %v", err)
	}
	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		t.Fatalf("bad key: %v", err)
	}
	cp := checkpoint.New(height, hash)
	if err := cp.Sign(secp256k1.PrivKeyFromBytes(keyBytes)); err != nil {
		t.Fatalf("unable to sign: %v", err)
	}
	return *cp
}

// writeCheckpointsFile writes the checkpoints as a JSON array file.
func writeCheckpointsFile(t *testing.T, path string, cps ...checkpoint.Checkpoint) {
	t.Helper()
	b, err := json.Marshal(cps)
	if err != nil {
		t.Fatalf("unable to marshal: %v", err)
	}
	if err := os.WriteFile(path, b, 0600); err != nil {
		t.Fatalf("unable to write %s: %v", path, err)
	}
}

// decodeCheckpoints parses list output.
func decodeCheckpoints(t *testing.T, out string) []checkpoint.Checkpoint {
	t.Helper()
	var cps []checkpoint.Checkpoint
	if err := json.Unmarshal([]byte(out), &cps); err != nil {
		t.Fatalf("unable to parse %q: %v", out, err)
	}
	return cps
}

// TestCheckpointCommands exercises the store backed commands end to end over
// a persistent database.
func TestCheckpointCommands(t *testing.T) {
	for _, dbType := range []string{"ldb", "boltdb"} {
		t.Run(dbType, func(t *testing.T) {
			testCheckpointCommands(t, dbType)
		})
	}
}

func testCheckpointCommands(t *testing.T, dbType string) {
	h := newCtlHarness(t, dbType)

	// Nothing is stored yet.
	if cps := decodeCheckpoints(t, h.mustRun("list")); len(cps) != 0 {
		t.Fatalf("unexpected checkpoints in new database: %v", cps)
	}

	out := h.mustRun("sign", "500", testHashA, chaincfg.RegNetPrivKey)
	var signed checkpoint.Checkpoint
	if err := json.Unmarshal([]byte(out), &signed); err != nil {
		t.Fatalf("unable to parse sign output %q: %v", out, err)
	}
	if signed.Height != 500 || signed.Hash.String() != testHashA {
		t.Fatalf("unexpected signed checkpoint %v", signed)
	}
	h.mustRun("sign", "1000", testHashB, chaincfg.RegNetPrivKey)

	// Get returns the stored checkpoint.
	var got checkpoint.Checkpoint
	if err := json.Unmarshal([]byte(h.mustRun("get", "500")), &got); err != nil {
		t.Fatalf("unable to parse get output: %v", err)
	}
	if got.Hash != signed.Hash || !bytes.Equal(got.Signature, signed.Signature) {
		t.Fatalf("get mismatch -- got %v, want %v", got, signed)
	}
	_, err := h.run(nil, "get", "7")
	if !errors.Is(err, checkpoint.ErrCheckpointNotFound) {
		t.Fatalf("get missing: unexpected error %v", err)
	}

	// List is strictly above the height.
	if cps := decodeCheckpoints(t, h.mustRun("list")); len(cps) != 2 {
		t.Fatalf("list: got %d checkpoints, want 2", len(cps))
	}
	if cps := decodeCheckpoints(t, h.mustRun("list", "-1")); len(cps) != 2 {
		t.Fatalf("list -1: got %d checkpoints, want 2", len(cps))
	}
	cps := decodeCheckpoints(t, h.mustRun("list", "500"))
	if len(cps) != 1 || cps[0].Height != 1000 {
		t.Fatalf("list 500: unexpected result %v", cps)
	}

	out = h.mustRun("verify")
	if !strings.Contains(out, "2 checkpoints verified") {
		t.Fatalf("verify: unexpected output %q", out)
	}

	// A checkpoint signed by another key is rejected.
	_, err = h.run(nil, "sign", "1500", testHashC, otherPrivKey)
	if !errors.Is(err, checkpoint.ErrBadCheckpointSignature) {
		t.Fatalf("sign with other key: unexpected error %v", err)
	}

	// Importing a file with any badly signed checkpoint writes nothing.
	importFile := filepath.Join(h.appData, "import.json")
	good := signedCheckpoint(t, 2000, testHashC, chaincfg.RegNetPrivKey)
	bad := signedCheckpoint(t, 2500, testHashC, otherPrivKey)
	writeCheckpointsFile(t, importFile, good, bad)
	if _, err := h.run(nil, "import", importFile); err == nil {
		t.Fatal("import with bad signature: expected error")
	}
	if cps := decodeCheckpoints(t, h.mustRun("list")); len(cps) != 2 {
		t.Fatalf("partial import: got %d checkpoints, want 2", len(cps))
	}

	writeCheckpointsFile(t, importFile, good)
	out = h.mustRun("import", importFile)
	if !strings.Contains(out, "imported 1 checkpoints") {
		t.Fatalf("import: unexpected output %q", out)
	}
	cps = decodeCheckpoints(t, h.mustRun("list", "1000"))
	if len(cps) != 1 || cps[0].Height != 2000 {
		t.Fatalf("list after import: unexpected result %v", cps)
	}

	// Verifying against another key flags every checkpoint.
	otherKeyBytes, _ := hex.DecodeString(otherPrivKey)
	otherPub := secp256k1.PrivKeyFromBytes(otherKeyBytes).PubKey()
	pubFlag := "--pubkey=" + hex.EncodeToString(otherPub.SerializeCompressed())
	out, err = h.run([]string{pubFlag}, "verify")
	if err == nil {
		t.Fatal("verify with other key: expected error")
	}
	if strings.Count(out, "INVALID SIGNATURE") != 3 {
		t.Fatalf("verify with other key: unexpected output %q", out)
	}
}

// TestCommandErrors ensures malformed command lines are rejected.
func TestCommandErrors(t *testing.T) {
	h := newCtlHarness(t, "memdb")

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"missing args", []string{"sign", "500"}},
		{"extra args", []string{"verify", "now"}},
		{"bad height", []string{"get", "five"}},
		{"negative height", []string{"sign", "-5", testHashA, chaincfg.RegNetPrivKey}},
		{"short hash", []string{"sign", "5", "00ff", chaincfg.RegNetPrivKey}},
		{"bad hash", []string{"sign", "5", strings.Repeat("zz", 32), chaincfg.RegNetPrivKey}},
		{"short key", []string{"sign", "5", testHashA, "0102"}},
		{"bad key", []string{"sign", "5", testHashA, strings.Repeat("x", 64)}},
		{"missing import file", []string{"import", filepath.Join(h.appData, "nope.json")}},
		{"bad bits", []string{"target", "zz"}},
	}

	for _, test := range tests {
		if _, err := h.run(nil, test.args...); err == nil {
			t.Errorf("%q: expected error", test.name)
		}
	}
}

// TestGenKey ensures genkey prints a usable key pair.
func TestGenKey(t *testing.T) {
	h := newCtlHarness(t, "memdb")
	out := h.mustRun("genkey")

	var privHex, pubHex string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		switch {
		case strings.HasPrefix(line, "private key:"):
			privHex = fields[len(fields)-1]
		case strings.HasPrefix(line, "public key:"):
			pubHex = fields[len(fields)-1]
		}
	}

	privBytes, err := hex.DecodeString(privHex)
	if err != nil || len(privBytes) != secp256k1.PrivKeyBytesLen {
		t.Fatalf("bad private key in %q", out)
	}
	wantPub := secp256k1.PrivKeyFromBytes(privBytes).PubKey().SerializeCompressed()
	if pubHex != hex.EncodeToString(wantPub) {
		t.Fatalf("public key does not match private key in %q", out)
	}

	// The generated key signs checkpoints the public key verifies.
	cp := signedCheckpoint(t, 10, testHashA, privHex)
	pub, err := secp256k1.ParsePubKey(wantPub)
	if err != nil {
		t.Fatalf("unable to parse public key: %v", err)
	}
	if !cp.CheckSignature(pub) {
		t.Fatal("generated key does not verify its own signature")
	}
}

// hasLine reports whether the output has a line equal to want.
func hasLine(out, want string) bool {
	for _, line := range strings.Split(out, "\n") {
		if line == want {
			return true
		}
	}
	return false
}

// TestTargetCommand ensures target decodes and validates compact bits and hex
// targets against the network limit.  Invalid targets print the reason after
// the verdict.
func TestTargetCommand(t *testing.T) {
	h := newCtlHarness(t, "memdb")

	tests := []struct {
		name       string
		arg        string
		want       []string
		wantReason string
	}{{
		name: "bitcoin genesis bits",
		arg:  "1d00ffff",
		want: []string{
			"bits:       1d00ffff",
			"target:     00000000ffff0000000000000000000000000000000000000000000000000000",
			"work:       4295032833",
			"valid:      yes",
		},
	}, {
		name: "prefixed bits",
		arg:  "0x1d00ffff",
		want: []string{"bits:       1d00ffff", "valid:      yes"},
	}, {
		name: "hex target",
		arg:  "00000000ffff0000000000000000000000000000000000000000000000000000",
		want: []string{"bits:       1d00ffff", "work:       4295032833"},
	}, {
		name:       "negative bits",
		arg:        "04923456",
		want:       []string{"negative:   true", "overflows:  false"},
		wantReason: "compact bits 04923456 encode a negative value",
	}, {
		name: "regnet limit",
		arg:  "207fffff",
		want: []string{"work:       2", "valid:      yes"},
	}, {
		name:       "above regnet limit",
		arg:        "2100ffff",
		want:       []string{"bits:       2100ffff", "negative:   false"},
		wantReason: "is higher than max",
	}}

	for _, test := range tests {
		out, err := h.run(nil, "target", test.arg)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", test.name, err)
			continue
		}
		for _, want := range test.want {
			if !hasLine(out, want) {
				t.Errorf("%q: output %q has no line %q", test.name,
					out, want)
			}
		}

		// Only invalid targets carry a reason, and it follows "no".
		validYes := hasLine(out, "valid:      yes")
		if test.wantReason == "" {
			if !validYes {
				t.Errorf("%q: output %q is not valid", test.name, out)
			}
			continue
		}
		if validYes {
			t.Errorf("%q: output %q is unexpectedly valid", test.name, out)
			continue
		}
		var found bool
		for _, line := range strings.Split(out, "\n") {
			if strings.HasPrefix(line, "valid:      no (") &&
				strings.HasSuffix(line, ")") &&
				strings.Contains(line, test.wantReason) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%q: output %q has no invalid verdict with reason %q",
				test.name, out, test.wantReason)
		}
	}
}
