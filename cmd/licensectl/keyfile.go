package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/licensekit/licensekit-go/keys"
	"github.com/licensekit/licensekit-go/paserk"
)

const (
	privateKeyExt = ".key"
	publicKeyExt  = ".pub"

	privateKeyPerm = 0o600
	publicKeyPerm  = 0o644
	keyDirPerm     = 0o700
)

// readText returns the trimmed contents of a file.
func (a *app) readText(path string) (string, error) {
	p, err := a.expand(path)
	if err != nil {
		return "", err
	}
	data, err := afero.ReadFile(a.Fs, p)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// resolveKey returns the path of a key file. A bare file name that does not
// exist in the working directory is looked up in the key directory.
func (a *app) resolveKey(path string) (string, error) {
	p, err := a.expand(path)
	if err != nil {
		return "", err
	}
	if filepath.Base(p) != p {
		return p, nil
	}
	if ok, _ := afero.Exists(a.Fs, p); ok {
		return p, nil
	}
	dir, err := a.expand(a.env.KeyDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, p), nil
}

// readKey loads a PASERK or PEM/base64 key file, trying kinds in order for
// text that does not name its own algorithm.
func (a *app) readKey(path string, kinds ...keys.Kind) (keys.Key, error) {
	p, err := a.resolveKey(path)
	if err != nil {
		return nil, err
	}
	text, err := a.readText(p)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(text, paserk.Version+".") {
		k, err := paserk.Decode(text)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return k, nil
	}

	var errs []error
	for _, kind := range kinds {
		k, err := keys.ImportText(kind, text)
		if err == nil {
			return k, nil
		}
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("import %s: %w", path, errors.Join(errs...))
}

func (a *app) readPrivateKey(path string, kinds ...keys.Kind) (*keys.PrivateKey, error) {
	k, err := a.readKey(path, kinds...)
	if err != nil {
		return nil, err
	}
	priv, ok := k.(*keys.PrivateKey)
	if !ok {
		k.Dispose()
		return nil, fmt.Errorf("%s: expected a private key, got a %s key", path, k.Kind())
	}
	if err := keys.Require(priv, "load "+path, kinds...); err != nil {
		priv.Dispose()
		return nil, err
	}
	return priv, nil
}

// readPublicKey accepts a private key file too and returns its public half.
func (a *app) readPublicKey(path string, kinds ...keys.Kind) (*keys.PublicKey, error) {
	k, err := a.readKey(path, kinds...)
	if err != nil {
		return nil, err
	}
	var pub *keys.PublicKey
	switch v := k.(type) {
	case *keys.PublicKey:
		pub = v
	case *keys.PrivateKey:
		pub = v.Public()
	default:
		k.Dispose()
		return nil, fmt.Errorf("%s: expected a public key, got a %s key", path, k.Kind())
	}
	if err := keys.Require(pub, "load "+path, kinds...); err != nil {
		return nil, err
	}
	return pub, nil
}

func (a *app) readSymmetricKey(path string) (*keys.SymmetricKey, error) {
	k, err := a.readKey(path, keys.KindSymmetric)
	if err != nil {
		return nil, err
	}
	sym, ok := k.(*keys.SymmetricKey)
	if !ok {
		k.Dispose()
		return nil, fmt.Errorf("%s: expected a symmetric key, got a %s key", path, k.Kind())
	}
	return sym, nil
}

// writeFile writes data, creating parent directories. Existing files are
// kept unless force is set.
func (a *app) writeFile(path string, data []byte, perm os.FileMode, force bool) error {
	if !force {
		if ok, _ := afero.Exists(a.Fs, path); ok {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := a.Fs.MkdirAll(filepath.Dir(path), keyDirPerm); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(a.Fs, path, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	a.log.WithField("path", path).Debug("wrote file")
	return nil
}

// readInput returns an argument value, the contents of a file when the
// argument starts with "@", or standard input for "-".
func (a *app) readInput(arg string) (string, error) {
	switch {
	case arg == "-":
		data, err := afero.ReadAll(a.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	case strings.HasPrefix(arg, "@"):
		return a.readText(arg[1:])
	default:
		return strings.TrimSpace(arg), nil
	}
}
