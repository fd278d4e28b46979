package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"sigil.co/sigil/keystore"
	"sigil.co/sigil/remotesign"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/secmem/poolmetrics"
	"sigil.co/sigil/sigalg"
	"sigil.co/sigil/sigkey"

	_ "sigil.co/sigil/backend/ed25519std"
)

func main() {
	fs := flag.NewFlagSet("sigil-signerd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7788", "listen address")
	signer := fs.String("signer", "", "stored key name (required)")
	signerRole := fs.String("signer-role", "", "stored role (root key when omitted)")
	dir := fs.String("dir", "", "key store directory (default ~/.sigil/keys)")

	_ = fs.Parse(os.Args[1:])
	if *signer == "" {
		fmt.Fprintln(os.Stderr, "sigil-signerd: --signer is required")
		os.Exit(2)
	}

	store, err := keystore.New(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx := context.Background()
	pool := secmem.New(secmem.Config{Metrics: poolmetrics.Sink()})
	defer pool.Close()

	keyID, err := store.KeyID(*signer, *signerRole)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	material, err := store.LoadPrivateKey(ctx, pool, *signer, *signerRole)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	pub, err := publicKeyBytes(material.Bytes())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	key, err := sigkey.PrivateKeyFromTag(keyID, material)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer key.Close()

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	remotesign.RegisterSignerServer(s, &remotesign.Server{
		Key:            key,
		Pool:           pool,
		PublicKeyBytes: pub,
		Alg:            sigalg.Ed25519,
	})

	fmt.Fprintf(os.Stderr, "sigil-signerd listening on %s (key=%s)\n", lis.Addr().String(), keyID)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
