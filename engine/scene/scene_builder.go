package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithInstances adds initial instances to the scene.
//
// Parameters:
//   - instances: the instances to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithInstances(instances ...Instance) SceneBuilderOption {
	return func(s *scene) {
		s.instances = append(s.instances, instances...)
		for range instances {
			s.transforms = append(s.transforms, [16]float32{})
		}
	}
}

// WithComputeWorkers sets the number of worker goroutines used during the
// parallel matrix rebuild in Update. Defaults to runtime.NumCPU()-1.
// Higher values may improve throughput with many instances; lower values
// reduce scheduling overhead for small scenes.
//
// Parameters:
//   - n: the number of compute workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.computeWorkers = n
	}
}
