package postfx

// MaterialSlot owns at most one material built from a shader. It is rebuilt
// whenever the shader reference changes and dropped when the shader is
// missing or unsupported.
type MaterialSlot struct {
	material Material
	warned   map[string]bool
	logger   Logger
}

func NewMaterialSlot(logger Logger) *MaterialSlot {
	return &MaterialSlot{logger: orNop(logger)}
}

// Resolve returns a material for shader or nil when none can be made.
// It is called every frame; a failing shader is retried each call but only
// reported once.
func (s *MaterialSlot) Resolve(dev Device, shader Shader) Material {
	if s.logger == nil {
		s.logger = NewNopLogger()
	}
	if shader == nil {
		s.Release()
		return nil
	}
	if !shader.IsSupported() {
		s.Release()
		s.warnOnce(shader, "shader %q is not supported, effect falls back to pass-through", shader.Name())
		return nil
	}
	if s.material != nil && s.material.Shader() == shader {
		return s.material
	}

	s.Release()
	mat, err := dev.NewMaterial(shader)
	if err != nil || mat == nil {
		s.warnOnce(shader, "creating material for shader %q: %v", shader.Name(), err)
		return nil
	}
	s.logger.Debugf("material created for shader %q", shader.Name())
	s.material = mat
	return mat
}

// Material returns the cached material without resolving.
func (s *MaterialSlot) Material() Material {
	return s.material
}

func (s *MaterialSlot) Release() {
	if s.material == nil {
		return
	}
	s.material.Release()
	s.material = nil
}

func (s *MaterialSlot) warnOnce(shader Shader, format string, args ...any) {
	if s.warned == nil {
		s.warned = make(map[string]bool)
	}
	if s.warned[shader.Name()] {
		return
	}
	s.warned[shader.Name()] = true
	s.logger.Warnf(format, args...)
}
