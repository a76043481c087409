package application

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// registerProgramValidators registers domain-specific validation functions
// with the validator instance, including semantic version validation for
// the program manifest.
func registerProgramValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0 &&
		fmt.Sprintf("%d.%d.%d", major, minor, patch) == value
}

// validateSemantics performs reference-integrity checks a struct tag
// cannot express: every class referenced by an instantiation or the
// program's main entry must be declared, and every trigger/source/effect
// referencing a port must name an instantiation declared in the same
// reactor (or be the bare reactor-local "self.port" form).
func validateSemantics(config *ProgramConfig) error {
	classes := make(map[string]ReactorConfig, len(config.Classes))
	for _, c := range config.Classes {
		if _, dup := classes[c.ClassName]; dup {
			return fmt.Errorf("duplicate reactor class: %s", c.ClassName)
		}
		classes[c.ClassName] = c
	}

	if _, ok := classes[config.Main]; !ok {
		return fmt.Errorf("main class %q is not declared", config.Main)
	}

	for _, c := range classes {
		instNames := make(map[string]string, len(c.Instantiations))
		for _, inst := range c.Instantiations {
			if _, dup := instNames[inst.Name]; dup {
				return fmt.Errorf("reactor %s: duplicate instantiation name %q", c.ClassName, inst.Name)
			}
			if _, ok := classes[inst.ClassName]; !ok {
				return fmt.Errorf("reactor %s: instantiation %q references undeclared class %q", c.ClassName, inst.Name, inst.ClassName)
			}
			instNames[inst.Name] = inst.ClassName
		}

		refOK := func(ref PortRefConfig) error {
			if ref.Instantiation == "" {
				return nil
			}
			if _, ok := instNames[ref.Instantiation]; !ok {
				return fmt.Errorf("reactor %s: reference %s.%s names undeclared instantiation", c.ClassName, ref.Instantiation, ref.Port)
			}
			return nil
		}

		for _, conn := range c.Connections {
			for _, l := range conn.Left {
				if err := refOK(l); err != nil {
					return err
				}
			}
			for _, r := range conn.Right {
				if err := refOK(r); err != nil {
					return err
				}
			}
		}

		for _, rd := range c.Reactions {
			all := append(append(append([]TriggerRefConfig{}, rd.Triggers...), rd.Sources...), rd.Effects...)
			for _, t := range all {
				if t.Port != nil {
					if err := refOK(*t.Port); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}
