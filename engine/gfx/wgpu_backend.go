package gfx

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting,
	// capping frame rate to the monitor's refresh rate.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for
	// vertical blank. May tear but has the lowest latency.
	PresentModeUncapped
)

// wgpuBackend is the WebGPU implementation of the Backend interface.
// It owns the instance/adapter/device/queue chain plus the surface and the
// per-frame encoder and render pass state.
type wgpuBackend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	clearColor  wgpu.Color

	// Frame state for batching all draw calls of one frame into a single
	// command submission.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ Backend = &wgpuBackend{}

// newWGPUBackend creates the backend for a window surface, requesting an
// adapter and device and configuring the surface at the given size.
// Construction failures here are unrecoverable setup errors and panic, as
// there is no rendering to fall back to without a device.
func newWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, cfg backendConfig) *wgpuBackend {
	runtime.LockOSThread()

	b := &wgpuBackend{
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		clearColor:  cfg.clearColor,
	}
	if cfg.presentMode == PresentModeUncapped {
		b.presentMode = wgpu.PresentModeImmediate
	}

	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(err)
	}
	b.device = d
	b.queue = d.GetQueue()

	b.configureSurface(width, height)

	return b
}

// ConfigureSurface reconfigures the surface and depth attachment for a new
// size. Call when the window is resized.
//
// Parameters:
//   - width: the new surface width in pixels
//   - height: the new surface height in pixels
func (b *wgpuBackend) ConfigureSurface(width, height int) {
	b.configureSurface(width, height)
}

func (b *wgpuBackend) configureSurface(width, height int) {
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	// View is set per-frame to the acquired swapchain view.
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       nil,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

func (b *wgpuBackend) CompileShader(label string, kind StageKind, source string) (any, error) {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

func (b *wgpuBackend) LinkProgram(desc ProgramDescriptor) (*LinkedProgram, error) {
	var vertex, fragment *StageModule
	for i := range desc.Stages {
		switch desc.Stages[i].Kind {
		case StageVertex:
			vertex = &desc.Stages[i]
		case StageFragment:
			fragment = &desc.Stages[i]
		}
	}
	if vertex == nil || fragment == nil {
		return nil, fmt.Errorf("both vertex and fragment stages are required")
	}

	// Group uniform bindings by bind group index and create the layouts,
	// backing buffers, and bind groups in one pass.
	groups := make(map[int][]UniformSpec)
	maxGroup := -1
	for _, u := range desc.Uniforms {
		groups[u.Key.Group] = append(groups[u.Key.Group], u)
		if u.Key.Group > maxGroup {
			maxGroup = u.Key.Group
		}
	}

	uniformBuffers := make(map[UniformKey]any, len(desc.Uniforms))
	bindGroups := make(map[int]any, len(groups))
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)

	for g, specs := range groups {
		layoutEntries := make([]wgpu.BindGroupLayoutEntry, 0, len(specs))
		for _, spec := range specs {
			layoutEntries = append(layoutEntries, wgpu.BindGroupLayoutEntry{
				Binding:    uint32(spec.Key.Binding),
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: spec.Size,
				},
			})
		}

		layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s Group %d Layout", desc.Label, g),
			Entries: layoutEntries,
		})
		if err != nil {
			return nil, fmt.Errorf("bind group layout for group %d: %w", g, err)
		}
		bindGroupLayouts[g] = layout

		groupEntries := make([]wgpu.BindGroupEntry, 0, len(specs))
		for _, spec := range specs {
			buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: fmt.Sprintf("%s Uniform %d.%d", desc.Label, g, spec.Key.Binding),
				Size:  spec.Size,
				Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			})
			if err != nil {
				return nil, fmt.Errorf("uniform buffer for group %d binding %d: %w", g, spec.Key.Binding, err)
			}
			uniformBuffers[spec.Key] = buf
			groupEntries = append(groupEntries, wgpu.BindGroupEntry{
				Binding: uint32(spec.Key.Binding),
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			})
		}

		bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   fmt.Sprintf("%s Group %d", desc.Label, g),
			Layout:  layout,
			Entries: groupEntries,
		})
		if err != nil {
			return nil, fmt.Errorf("bind group %d: %w", g, err)
		}
		bindGroups[g] = bindGroup
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vertex.Module.(*wgpu.ShaderModule),
			EntryPoint: vertex.EntryPoint,
			Buffers:    desc.VertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fragment.Module.(*wgpu.ShaderModule),
			EntryPoint: fragment.EntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return &LinkedProgram{
		Pipeline:       pipeline,
		UniformBuffers: uniformBuffers,
		BindGroups:     bindGroups,
	}, nil
}

func (b *wgpuBackend) CreateBuffer(label string, target BufferTarget, size int) (any, error) {
	var usage wgpu.BufferUsage
	switch target {
	case TargetVertex:
		usage = wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	case TargetIndex:
		usage = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	case TargetUniform:
		usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(size),
		Usage: usage,
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (b *wgpuBackend) WriteBuffer(handle any, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	// Queue writes must be 4-byte aligned in size; pad a copy when needed
	// (uint16 index uploads with an odd index count hit this).
	if rem := len(data) % 4; rem != 0 {
		padded := make([]byte, len(data)+4-rem)
		copy(padded, data)
		data = padded
	}
	b.queue.WriteBuffer(handle.(*wgpu.Buffer), uint64(offset), data)
}

func (b *wgpuBackend) DestroyBuffer(handle any) {
	if handle == nil {
		return
	}
	handle.(*wgpu.Buffer).Release()
}

func (b *wgpuBackend) BeginFrame() error {
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.renderPassDescriptor.ColorAttachments[0].View = view
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuBackend) EndFrame() {
	if b.framePass == nil {
		return
	}

	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err == nil {
		b.queue.Submit(commandBuffer)
		commandBuffer.Release()
	}

	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
}

func (b *wgpuBackend) Present() {
	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	b.frameView.Release()
	b.frameView = nil
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuBackend) BindPipeline(lp *LinkedProgram) {
	b.framePass.SetPipeline(lp.Pipeline.(*wgpu.RenderPipeline))
	for g, bg := range lp.BindGroups {
		b.framePass.SetBindGroup(uint32(g), bg.(*wgpu.BindGroup), nil)
	}
}

func (b *wgpuBackend) BindVertexBuffer(slot int, handle any) {
	b.framePass.SetVertexBuffer(uint32(slot), handle.(*wgpu.Buffer), 0, wgpu.WholeSize)
}

func (b *wgpuBackend) BindIndexBuffer(handle any, format IndexFormat) {
	f := wgpu.IndexFormatUint16
	if format == IndexFormatUint32 {
		f = wgpu.IndexFormatUint32
	}
	b.framePass.SetIndexBuffer(handle.(*wgpu.Buffer), f, 0, wgpu.WholeSize)
}

func (b *wgpuBackend) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	b.framePass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}
