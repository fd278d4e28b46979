package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"sigil.co/sigil/keyid"
	"sigil.co/sigil/keymat"
	"sigil.co/sigil/keystore"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
	"sigil.co/sigil/sigkey"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "gen":
		return cmdGen(args[1:], out, errOut)
	case "sign":
		return cmdSign(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "keyid":
		return cmdKeyID(args[1:], out, errOut)
	case "algorithms":
		return cmdAlgorithms(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "sigil-keytool: local signing key management and one-shot sign/verify")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  sigil-keytool key init --name <name> [--seed-hex <64hex>] [--dir <path>] [--force]")
	fmt.Fprintln(w, "  sigil-keytool key derive --from <name> --role <role> [--dir <path>] [--force]")
	fmt.Fprintln(w, "  sigil-keytool key list [--dir <path>]")
	fmt.Fprintln(w, "  sigil-keytool key id --name <name> [--role <role>] [--dir <path>]")
	fmt.Fprintln(w, "  sigil-keytool gen --alg <algorithm>")
	fmt.Fprintln(w, "  sigil-keytool sign --signer <name> [--signer-role <role>] [--dir <path>] <file>")
	fmt.Fprintln(w, "  sigil-keytool verify --alg <algorithm> --pub-hex <hex> --sig-hex <hex> <file>")
	fmt.Fprintln(w, "  sigil-keytool keyid --pub-hex <hex>")
	fmt.Fprintln(w, "  sigil-keytool algorithms")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed; omitted means random")
	fmt.Fprintln(w, "  - keys live under ~/.sigil/keys/<name> (0600 key files) unless --dir is given")
	fmt.Fprintln(w, "  - sign prints the hex signature to stdout (no trailing data)")
	fmt.Fprintln(w, "  - gen prints pub and priv hex lines; keep the priv line secret")
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: sigil-keytool key <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: init, derive, list, id")
		return 2
	}
	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("key init", flag.ContinueOnError)
		fs.SetOutput(errOut)
		name := fs.String("name", "", "Key name")
		seedHex := fs.String("seed-hex", "", "Ed25519 seed as 64 hex chars (random when omitted)")
		dir := fs.String("dir", "", "Key store directory (default ~/.sigil/keys)")
		force := fs.Bool("force", false, "Overwrite an existing key")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *name == "" {
			fmt.Fprintln(errOut, "key init: --name is required")
			return 2
		}

		var seed []byte
		if *seedHex != "" {
			var err error
			seed, err = keystore.ParseSeedHex(*seedHex)
			if err != nil {
				fmt.Fprintf(errOut, "key init: %v\n", err)
				return 1
			}
		} else {
			seed = make([]byte, ed25519.SeedSize)
			if _, err := rand.Read(seed); err != nil {
				fmt.Fprintf(errOut, "key init: %v\n", err)
				return 1
			}
		}

		store, err := keystore.New(*dir)
		if err != nil {
			fmt.Fprintf(errOut, "key init: %v\n", err)
			return 1
		}
		keyID, path, err := store.InitRoot(*name, seed, *force)
		if err != nil {
			fmt.Fprintf(errOut, "key init: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "%s\t%s\n", keyID, path)
		return 0

	case "derive":
		fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
		fs.SetOutput(errOut)
		from := fs.String("from", "", "Root key name")
		role := fs.String("role", "", "Role to derive")
		dir := fs.String("dir", "", "Key store directory (default ~/.sigil/keys)")
		force := fs.Bool("force", false, "Overwrite an existing role key")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *from == "" || *role == "" {
			fmt.Fprintln(errOut, "key derive: --from and --role are required")
			return 2
		}

		store, err := keystore.New(*dir)
		if err != nil {
			fmt.Fprintf(errOut, "key derive: %v\n", err)
			return 1
		}
		keyID, path, err := store.DeriveRole(*from, *role, *force)
		if err != nil {
			fmt.Fprintf(errOut, "key derive: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "%s\t%s\n", keyID, path)
		return 0

	case "list":
		fs := flag.NewFlagSet("key list", flag.ContinueOnError)
		fs.SetOutput(errOut)
		dir := fs.String("dir", "", "Key store directory (default ~/.sigil/keys)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		store, err := keystore.New(*dir)
		if err != nil {
			fmt.Fprintf(errOut, "key list: %v\n", err)
			return 1
		}
		entries, err := store.List()
		if err != nil {
			fmt.Fprintf(errOut, "key list: %v\n", err)
			return 1
		}
		for _, entry := range entries {
			fmt.Fprintln(out, entry.Identifier)
			for _, role := range entry.Roles {
				fmt.Fprintf(out, "  %s\n", role)
			}
		}
		return 0

	case "id":
		fs := flag.NewFlagSet("key id", flag.ContinueOnError)
		fs.SetOutput(errOut)
		name := fs.String("name", "", "Key name")
		role := fs.String("role", "", "Role (root key when omitted)")
		dir := fs.String("dir", "", "Key store directory (default ~/.sigil/keys)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *name == "" {
			fmt.Fprintln(errOut, "key id: --name is required")
			return 2
		}

		store, err := keystore.New(*dir)
		if err != nil {
			fmt.Fprintf(errOut, "key id: %v\n", err)
			return 1
		}
		keyID, err := store.KeyID(*name, *role)
		if err != nil {
			fmt.Fprintf(errOut, "key id: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, keyID)
		return 0

	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n", args[0])
		return 2
	}
}

func cmdGen(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	fs.SetOutput(errOut)
	alg := fs.String("alg", string(sigalg.Ed25519), "Signing algorithm")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	generate, ok := generators[sigalg.Algorithm(*alg)]
	if !ok {
		fmt.Fprintf(errOut, "gen: no key generator for algorithm %q\n", *alg)
		return 1
	}
	pub, priv, err := generate(rand.Reader)
	if err != nil {
		fmt.Fprintf(errOut, "gen: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "pub\t%s\n", hex.EncodeToString(pub))
	fmt.Fprintf(out, "priv\t%s\n", hex.EncodeToString(priv))
	return 0
}

func cmdSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(errOut)
	signer := fs.String("signer", "", "Stored key name")
	signerRole := fs.String("signer-role", "", "Stored role (root key when omitted)")
	dir := fs.String("dir", "", "Key store directory (default ~/.sigil/keys)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *signer == "" || fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: sigil-keytool sign --signer <name> [--signer-role <role>] <file>")
		return 2
	}

	message, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}

	store, err := keystore.New(*dir)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	ctx := context.Background()
	pool := secmem.Shared()

	keyID, err := store.KeyID(*signer, *signerRole)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	material, err := store.LoadPrivateKey(ctx, pool, *signer, *signerRole)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	key, err := sigkey.PrivateKeyFromTag(keyID, material)
	if err != nil {
		material.Close()
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	defer key.Close()

	sig, err := key.Sign(ctx, message, pool)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	defer sig.Close()
	fmt.Fprintln(out, hex.EncodeToString(sig.Bytes()))
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	alg := fs.String("alg", string(sigalg.Ed25519), "Signing algorithm")
	pubHex := fs.String("pub-hex", "", "Raw public key, hex encoded")
	sigHex := fs.String("sig-hex", "", "Signature, hex encoded")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *pubHex == "" || *sigHex == "" || fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: sigil-keytool verify --alg <algorithm> --pub-hex <hex> --sig-hex <hex> <file>")
		return 2
	}

	message, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	pub, err := hex.DecodeString(*pubHex)
	if err != nil {
		fmt.Fprintf(errOut, "verify: invalid --pub-hex: %v\n", err)
		return 2
	}
	sig, err := hex.DecodeString(*sigHex)
	if err != nil {
		fmt.Fprintf(errOut, "verify: invalid --sig-hex: %v\n", err)
		return 2
	}

	ctx := context.Background()
	pool := secmem.Shared()
	buf, err := pool.Rent(ctx, len(pub))
	if err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	copy(buf.Bytes(), pub)
	material := keymat.NewPublicKey(buf, sigalg.TagFor(sigalg.Algorithm(*alg), sigalg.Verification))

	key, err := sigkey.PublicKeyFromTag("cli-verify", material)
	if err != nil {
		material.Close()
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	defer key.Close()

	ok, err := key.Verify(ctx, message, sig)
	if err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	if !ok {
		fmt.Fprintln(errOut, "signature INVALID")
		return 1
	}
	fmt.Fprintln(out, "OK")
	return 0
}

func cmdKeyID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("keyid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	pubHex := fs.String("pub-hex", "", "Raw public key, hex encoded")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *pubHex == "" {
		fmt.Fprintln(errOut, "usage: sigil-keytool keyid --pub-hex <hex>")
		return 2
	}
	pub, err := hex.DecodeString(*pubHex)
	if err != nil {
		fmt.Fprintf(errOut, "keyid: invalid --pub-hex: %v\n", err)
		return 2
	}
	fmt.Fprintln(out, keyid.String(pub))
	return 0
}

func cmdAlgorithms(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("algorithms", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	for _, pair := range sigalg.Pairs() {
		fmt.Fprintf(out, "%s\t%s\n", pair.Algorithm, pair.Purpose)
	}
	return 0
}
