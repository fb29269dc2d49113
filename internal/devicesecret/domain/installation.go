package domain

import (
	"fmt"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/devicesecret/internal/validation"
)

// Installation identifies one protected secret: the master key alias in the trust
// anchor and the key-value namespace holding its wrapped record.
type Installation struct {
	Alias     string
	Namespace string
}

// DefaultInstallation returns the DevianLocalDEK alias in the DevianCrypto namespace.
func DefaultInstallation() Installation {
	return Installation{Alias: DefaultAlias, Namespace: DefaultNamespace}
}

// Validate checks that alias and namespace are present and safe to use as storage keys.
func (i Installation) Validate() error {
	err := validation.ValidateStruct(&i,
		validation.Field(&i.Alias,
			validation.Required.Error("alias is required"),
			validation.Length(1, 128),
			customValidation.Identifier,
		),
		validation.Field(&i.Namespace,
			validation.Required.Error("namespace is required"),
			validation.Length(1, 128),
			customValidation.Identifier,
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstallation, err)
	}
	return nil
}

// String returns "namespace/alias", used as the lock key and in logs.
func (i Installation) String() string {
	return i.Namespace + "/" + i.Alias
}

// KekNamespace is the namespace used by trust anchors that keep sealed master keys in
// the same key-value store as the wrapped record.
func (i Installation) KekNamespace() string {
	return i.Namespace + ".kek"
}
