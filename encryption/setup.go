package encryption

import (
	"context"
	"fmt"
	"os"
)

// loadRSAKeyPair load the primary RSA key pair for encrypting and decrypting symmetric keys
func (e *cryptoEngine) loadRSAKeyPair(
	ctx context.Context, certFilePath string, keyFilePath string,
) error {
	certContent, err := os.ReadFile(certFilePath)
	if err != nil {
		return fmt.Errorf("%s read error [%w]", certFilePath, err)
	}

	keyContent, err := os.ReadFile(keyFilePath)
	if err != nil {
		return fmt.Errorf("%s read error [%w]", keyFilePath, err)
	}

	parsedCert, err := e.crypto.ParseCertificateFromPEM(ctx, string(certContent))
	if err != nil {
		return fmt.Errorf("failed to parse x509 certificate in %s [%w]", certFilePath, err)
	}

	parsedKey, err := e.crypto.ParseRSAPrivateKeyFromPEM(ctx, string(keyContent))
	if err != nil {
		return fmt.Errorf("failed to parse RSA private key in %s [%w]", keyFilePath, err)
	}

	parsedPubKey, err := e.crypto.ReadRSAPublicKeyFromCert(ctx, parsedCert)
	if err != nil {
		return fmt.Errorf(
			"failed to pull RSA public key from x509 certificate in %s [%w]", certFilePath, err,
		)
	}

	if parsedPubKey.N.Cmp(parsedKey.N) != 0 || parsedPubKey.E != parsedKey.E {
		return fmt.Errorf("RSA private key %s does not match certificate %s", keyFilePath, certFilePath)
	}

	e.rsaKey = parsedKey
	e.rsaPubKey = parsedPubKey

	return nil
}
