package cloud

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Module blobs are AES-128-CBC with an all-zero IV and PKCS#7 padding.
// The plaintext has a short binary header before the JSON document, so the
// decoder scans for the JSON start and balances brackets to find the end.

// DecryptBlob decrypts a base64 module blob with the account AES key and
// returns the embedded JSON document.
//
// Parameters:
//   - keyHex: Hex-encoded 128-bit AES key from the login session
//   - blobB64: Base64 ciphertext from a module's data or status field
//
// Returns:
//   - map[string]any: The decoded JSON document
//   - error: ErrNoKey without a key, ErrDecrypt when no JSON can be recovered
func DecryptBlob(keyHex, blobB64 string) (map[string]any, error) {
	if keyHex == "" {
		return nil, ErrNoKey
	}
	if blobB64 == "" {
		return nil, fmt.Errorf("%w: empty blob", ErrDecrypt)
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: bad key: %w", ErrDecrypt, err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(blobB64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64: %w", ErrDecrypt, err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d not a block multiple", ErrDecrypt, len(ciphertext))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	plaintext := make([]byte, len(ciphertext))
	iv := make([]byte, aes.BlockSize) // zero IV, per the vendor implementation
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	doc := extractJSON(plaintext)
	if doc == "" {
		return nil, fmt.Errorf("%w: no JSON document in plaintext", ErrDecrypt)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(doc), &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}
	return payload, nil
}

// extractJSON locates the JSON object inside decrypted plaintext.
// It skips the binary header, strips PKCS#7 padding, and balances brackets
// so trailing garbage after the document is ignored.
func extractJSON(plaintext []byte) string {
	// Find the JSON start
	start := -1
	for i, b := range plaintext {
		if b == '{' || b == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return ""
	}
	buf := plaintext[start:]

	// Strip PKCS#7 padding if the tail looks like valid padding
	if n := len(buf); n > 0 {
		pad := int(buf[n-1])
		if pad > 0 && pad <= aes.BlockSize && pad <= n {
			valid := true
			for _, b := range buf[n-pad:] {
				if int(b) != pad {
					valid = false
					break
				}
			}
			if valid {
				buf = buf[:n-pad]
			}
		}
	}

	// Balance brackets to find the document end
	depth := 0
	for i, b := range buf {
		switch b {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return string(buf[:i+1])
			}
		}
	}
	return ""
}

// ModuleName extracts the human-readable device name from a decrypted
// module document.
//
// Lookup order, matching the vendor app:
//  1. module.name
//  2. the first named entry of module.entities
//  3. module.device (when it is a string)
//
// Returns the empty string when no name is present.
func ModuleName(doc map[string]any) string {
	module, ok := doc["module"].(map[string]any)
	if !ok {
		return ""
	}

	if name, ok := module["name"].(string); ok && name != "" {
		return name
	}

	if entities, ok := module["entities"].([]any); ok {
		for _, e := range entities {
			entity, ok := e.(map[string]any)
			if !ok {
				continue
			}
			if name, ok := entity["name"].(string); ok && name != "" {
				return name
			}
		}
	}

	if device, ok := module["device"].(string); ok && device != "" {
		return device
	}

	return ""
}

// ModuleScenes reports whether a decrypted module document describes a
// scene. The cloud marks scenes with a group/scene flag on the module or
// with a "SCENE" device string.
func ModuleScenes(doc map[string]any) bool {
	module, ok := doc["module"].(map[string]any)
	if !ok {
		return false
	}
	if v, ok := module["scene"].(bool); ok && v {
		return true
	}
	if v, ok := module["group"].(bool); ok && v {
		return true
	}
	if device, ok := module["device"].(string); ok {
		return strings.EqualFold(device, "scene")
	}
	return false
}
