// Package licensekit issues and verifies offline software licenses.
//
// A license is a PASETO v4.public token whose payload holds typed Claims:
// the license id, the application it is bound to, its type, its expiry and
// open features and metadata maps. Licenses are verified in two phases, so
// that no License value ever holds unverified data:
//
//	raw, err := licensekit.ParseUnverified(token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lic, err := licensekit.Verify(raw, publicKey)
//
// Applications normally use a Validator instead, which folds every failure
// into one Status:
//
//	v, err := licensekit.NewValidator(publicKey,
//	    licensekit.WithSchema(s),
//	    licensekit.WithLogger(logrus.StandardLogger()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	switch st := v.Validate(token); st.State {
//	case licensekit.StateActive:
//	    fmt.Println("licensed until", st.License.ExpiresAt())
//	case licensekit.StateExpired:
//	    fmt.Println("license expired")
//	default:
//	    fmt.Println("not licensed:", st)
//	}
//
// Signing keys, token encoding and key serialization live in the keys,
// paseto and paserk packages. The legacy package verifies envelopes signed
// with ECDSA or RSA keys by earlier releases.
package licensekit
