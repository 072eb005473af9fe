package loaders

import "github.com/spaghettifunk/anima-content/engine/content"

// Defaults returns the built-in type readers.
func Defaults() []content.TypeReader {
	return []content.TypeReader{
		&SceneNodeLoader{},
		&LODGroupLoader{},
		&OcclusionMeshLoader{},
		&MaterialLoader{},
		&EffectLoader{},
		&BinaryLoader{},
	}
}

// RegisterDefaults registers every built-in type reader with reg.
func RegisterDefaults(reg *content.Registry) error {
	for _, tr := range Defaults() {
		if err := reg.Register(tr); err != nil {
			return err
		}
	}
	return nil
}

// NewDefaultRegistry returns a registry holding the built-in type readers.
func NewDefaultRegistry() *content.Registry {
	reg := content.NewRegistry()
	if err := RegisterDefaults(reg); err != nil {
		// the built-in set has unique names and targets
		panic(err)
	}
	return reg
}
