// Package sigkey binds key material to concrete signing and
// verification operations. An identified key couples an identifier
// string, one keymat value (ownership transferred in), and one delegate.
//
// Three construction paths exist:
//
//   - explicit: the caller supplies the delegate directly, bypassing the
//     registry (remote and hardware signers use this);
//   - tagged: the algorithm and purpose are read from the key material's
//     tag and resolved through the sigalg registry;
//   - bound: the key material itself is fetched lazily by a resolver
//     callback on first use.
//
// Verification failure is a normal false result, never an error. Only
// structural misuse — a disposed key, an unsupported algorithm,
// cancellation — is reported as an error.
package sigkey
