// Package scene manages a set of mesh instances and their per-frame model
// matrices, rebuilt in parallel on a persistent worker pool and rendered
// through an InstancedMaterial in a single draw.
package scene

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Dmajster/college-project-computer-graphics/common"
	"github.com/Dmajster/college-project-computer-graphics/engine/camera"
	"github.com/Dmajster/college-project-computer-graphics/engine/material"
	"github.com/Dmajster/college-project-computer-graphics/engine/model"
)

// Instance is one placed copy of the scene's mesh.
type Instance struct {
	Position [3]float32
	Rotation [3]float32 // Euler angles in radians
	Scale    [3]float32

	// AngularVelocity is added to Rotation each second of simulation time.
	AngularVelocity [3]float32
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name string
	cam  camera.Camera

	instances  []Instance
	transforms [][16]float32

	// computePool manages a bounded set of reusable goroutines for the
	// parallel matrix rebuild in Update. Workers persist across frames,
	// avoiding per-frame goroutine spawn/teardown overhead.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
	nextTaskID     int
}

// Scene holds mesh instances with a camera and rebuilds their model matrices
// each frame. Thread-safe for concurrent access.
type Scene interface {
	// Name retrieves the scene identifier.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// SetName sets the scene identifier.
	//
	// Parameters:
	//   - name: the scene name
	SetName(name string)

	// Camera retrieves the scene's camera.
	//
	// Returns:
	//   - camera.Camera: the attached camera
	Camera() camera.Camera

	// AddInstance appends an instance and returns its index.
	//
	// Parameters:
	//   - inst: the instance to add
	//
	// Returns:
	//   - int: the index of the added instance
	AddInstance(inst Instance) int

	// Instance retrieves the instance at the given index.
	//
	// Parameters:
	//   - i: the instance index
	//
	// Returns:
	//   - Instance: a copy of the instance
	Instance(i int) Instance

	// SetInstance replaces the instance at the given index.
	//
	// Parameters:
	//   - i: the instance index
	//   - inst: the new instance value
	SetInstance(i int, inst Instance)

	// InstanceCount returns the number of instances in the scene.
	//
	// Returns:
	//   - int: the instance count
	InstanceCount() int

	// Update advances instance rotations by their angular velocities and
	// rebuilds all model matrices, splitting the work across the compute
	// pool. Blocks until every matrix is rebuilt.
	//
	// Parameters:
	//   - deltaTime: elapsed simulation time in seconds
	Update(deltaTime float32)

	// Transforms returns the model matrices computed by the last Update, one
	// column-major matrix per instance. The returned slice is reused across
	// Updates.
	//
	// Returns:
	//   - [][16]float32: the per-instance model matrices
	Transforms() [][16]float32

	// Render draws all instances of the mesh through the material using the
	// scene camera's view-projection matrix.
	//
	// Parameters:
	//   - mat: the material to draw with
	//   - mesh: the mesh each instance copies
	//
	// Returns:
	//   - error: the error from the material's draw, if any
	Render(mat material.InstancedMaterial, mesh model.Mesh) error
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera. The camera is required
// and NewScene panics if it is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}

	s := &scene{
		mu:             &sync.RWMutex{},
		name:           name,
		cam:            cam,
		computeWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the compute pool after options so WithComputeWorkers can
	// override the default. Queue size of 256 accommodates typical chunk
	// counts with headroom.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) AddInstance(inst Instance) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances = append(s.instances, inst)
	s.transforms = append(s.transforms, [16]float32{})
	return len(s.instances) - 1
}

func (s *scene) Instance(i int) Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instances[i]
}

func (s *scene) SetInstance(i int, inst Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[i] = inst
}

func (s *scene) InstanceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances)
}

func (s *scene) Update(deltaTime float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.instances)
	if count == 0 {
		return
	}

	// Split the rebuild into one chunk per worker. Workers are reused across
	// frames; a WaitGroup provides per-frame barrier sync since the pool has
	// no frame-rate-friendly wait of its own.
	chunk := (count + s.computeWorkers - 1) / s.computeWorkers
	var wg sync.WaitGroup
	for start := 0; start < count; start += chunk {
		end := min(start+chunk, count)

		wg.Add(1)
		lo, hi := start, end
		id := s.nextTaskID
		s.nextTaskID++
		s.computePool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for i := lo; i < hi; i++ {
					inst := &s.instances[i]
					inst.Rotation[0] += inst.AngularVelocity[0] * deltaTime
					inst.Rotation[1] += inst.AngularVelocity[1] * deltaTime
					inst.Rotation[2] += inst.AngularVelocity[2] * deltaTime

					common.BuildModelMatrix(s.transforms[i][:],
						inst.Position[0], inst.Position[1], inst.Position[2],
						inst.Rotation[0], inst.Rotation[1], inst.Rotation[2],
						inst.Scale[0], inst.Scale[1], inst.Scale[2],
					)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *scene) Transforms() [][16]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transforms
}

func (s *scene) Render(mat material.InstancedMaterial, mesh model.Mesh) error {
	// Update rewrites the transform backing array in place, so hold the read
	// lock until the material has copied the matrices into its GPU buffers.
	s.mu.RLock()
	defer s.mu.RUnlock()

	return mat.Render(mesh, s.transforms, s.cam.ViewProjectionMatrix())
}
