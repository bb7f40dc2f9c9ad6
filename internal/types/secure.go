package types

import "log/slog"

const redactedPlaceholder = "***REDACTED***"

var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString holds a credential (database URL, Stripe key, owner password)
// and keeps it out of logs and JSON. String and MarshalJSON both yield a
// redacted placeholder; Unmask returns the plaintext.
type SecretString string

// String returns the redacted placeholder.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// LogValue keeps slog from printing the plaintext.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(redactedPlaceholder)
}

// MarshalJSON returns the redacted placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the plaintext value. Call sites should be limited to the
// places that hand the secret to a driver or HTTP client.
func (s SecretString) Unmask() string {
	return string(s)
}
