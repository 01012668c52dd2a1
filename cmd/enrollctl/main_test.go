package main

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestSignatureCommand(t *testing.T) {
	out, err := run(t, "signature", "--secret", "testsecret", "order_abc", "pay_xyz")
	if err != nil {
		t.Fatalf("signature: %v", err)
	}
	if out != "3dd5062c53f808ef094a994bb1e6be30c96d9d105a92a3e9d2bf1e23d040971a" {
		t.Fatalf("unexpected signature %q", out)
	}
}

func TestSignatureCommandNeedsSecret(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_SECRET", "")
	if _, err := run(t, "signature", "order_abc", "pay_xyz"); err == nil {
		t.Fatalf("expected error without a secret")
	}
}

func TestSignatureCommandArgs(t *testing.T) {
	if _, err := run(t, "signature", "--secret", "s", "only_one"); err == nil {
		t.Fatalf("expected argument error")
	}
}

func TestReconcileFlags(t *testing.T) {
	cmd := reconcileCmd()
	if f := cmd.Flags().Lookup("fix"); f == nil || f.DefValue != "false" {
		t.Fatalf("reconcile must default to a dry run")
	}
	if f := cmd.Flags().Lookup("limit"); f == nil || f.DefValue != "500" {
		t.Fatalf("unexpected limit default")
	}
}
