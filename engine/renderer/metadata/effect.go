package metadata

type ShaderStage uint8

const (
	ShaderStageVertex   ShaderStage = 0x1
	ShaderStageFragment ShaderStage = 0x2
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

type EffectStage struct {
	Stage      ShaderStage
	EntryPoint string
	/** @brief SPIR-V words. */
	Code []uint32
}

// Effect is a compiled shader program bound to material passes.
type Effect struct {
	Name   string
	Stages []EffectStage
}

func (e *Effect) Stage(stage ShaderStage) (EffectStage, bool) {
	for _, s := range e.Stages {
		if s.Stage == stage {
			return s, true
		}
	}
	return EffectStage{}, false
}
