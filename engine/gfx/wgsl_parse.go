package gfx

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// wgslTypeLayout holds the byte size and alignment of a WGSL type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// wgslPrimitiveLayoutMap maps WGSL scalar, vector, and matrix type names to
// their byte size and alignment per the WGSL specification.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec3<i32>": {12, 16},
	"vec3i":     {12, 16},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},

	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec3<u32>": {12, 16},
	"vec3u":     {12, 16},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	"mat3x3<f32>": {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// uniformDeclRegex captures group, binding, variable name, and type from
	// declarations like: @group(0) @binding(0) var<uniform> uViewProjection: mat4x4<f32>;
	uniformDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var<uniform>\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parsedField is a single field inside a WGSL struct block.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct is a struct block found in WGSL source.
type parsedStruct struct {
	name   string
	fields []parsedField
}

// uniformDecl is a var<uniform> declaration found in shader source, resolved
// to its binding key and byte size.
type uniformDecl struct {
	name string
	key  UniformKey
	size uint64
}

// parseEntryPoint extracts the entry point function name for the given stage
// from WGSL source. Returns an empty string if no matching annotation is found.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - kind: the stage to search for (StageVertex or StageFragment)
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, kind StageKind) string {
	cleaned := stripComments(source)

	var re *regexp.Regexp
	switch kind {
	case StageVertex:
		re = vertexEntryRegex
	case StageFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// parseUniformDecls extracts all var<uniform> declarations from WGSL source
// and resolves each one's byte size from the primitive layout table and any
// struct definitions in the same source. Declarations whose type cannot be
// resolved are skipped.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - []uniformDecl: declarations sorted by group then binding
func parseUniformDecls(source string) []uniformDecl {
	cleaned := stripComments(source)
	structSizes := computeStructSizes(parseStructBlocks(cleaned))

	matches := uniformDeclRegex.FindAllStringSubmatch(cleaned, -1)
	decls := make([]uniformDecl, 0, len(matches))
	for _, match := range matches {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		name := strings.TrimSpace(match[3])
		typeName := strings.TrimSpace(match[4])

		layout, ok := resolveTypeLayout(typeName, structSizes)
		if !ok || layout.size == 0 {
			continue
		}

		decls = append(decls, uniformDecl{
			name: name,
			key:  UniformKey{Group: group, Binding: binding},
			size: layout.size,
		})
	}

	sort.Slice(decls, func(i, j int) bool {
		if decls[i].key.Group != decls[j].key.Group {
			return decls[i].key.Group < decls[j].key.Group
		}
		return decls[i].key.Binding < decls[j].key.Binding
	})

	return decls
}

// parseVertexInputLocations counts the attribute locations consumed by the
// vertex stage. It collects @location attributes from pure vertex input
// structs (structs with at least one @location field and no @builtin fields)
// plus any @location parameters declared directly on the vertex entry point.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - int: the number of distinct input locations the vertex stage consumes
func parseVertexInputLocations(source string) int {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)

	inputStructs := make(map[string]int)
	for _, ps := range structs {
		if isVertexInputStruct(ps) {
			count := 0
			for _, f := range ps.fields {
				if f.location >= 0 {
					count++
				}
			}
			inputStructs[ps.name] = count
		}
	}

	params := parseVertexEntryParams(cleaned)
	total := 0
	for _, p := range params {
		if p.location >= 0 {
			total++
			continue
		}
		if count, ok := inputStructs[p.typeName]; ok {
			total += count
		}
	}

	return total
}

// parseVertexEntryParams parses the parameter list of the @vertex entry point
// into fields, reusing struct field parsing since the syntax is identical.
func parseVertexEntryParams(cleaned string) []parsedField {
	match := vertexEntryRegex.FindStringIndex(cleaned)
	if match == nil {
		return nil
	}

	rest := cleaned[match[1]:]
	open := strings.Index(rest, "(")
	if open < 0 {
		return nil
	}

	depth := 0
	for i := open; i < len(rest); i++ {
		switch rest[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return parseStructFields(rest[open+1 : i])
			}
		}
	}
	return nil
}

// isVertexInputStruct returns true if the struct is a pure vertex input,
// meaning it has at least one @location field and zero @builtin fields. This
// distinguishes vertex input structs from vertex output structs which mix
// @location with @builtin(position).
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL
// source and parses their fields including @location and @builtin attributes.
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}

	return structs
}

// parseStructFields parses the body of a struct block into individual fields,
// extracting @location and @builtin attributes along with the name and type.
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var field parsedField

		if builtinRegex.MatchString(line) {
			field.isBuiltin = true
		}

		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			loc, err := strconv.Atoi(locMatch[1])
			if err == nil {
				field.location = loc
			}
		} else {
			field.location = -1
		}

		if fm := fieldRegex.FindStringSubmatch(line); fm != nil {
			field.name = fm[1]
			field.typeName = strings.TrimSpace(fm[2])
		} else {
			continue
		}

		fields = append(fields, field)
	}

	return fields
}

// computeStructSizes computes the byte size and alignment of all parsed WGSL
// structs, resolving dependencies between structs iteratively for the case
// where one struct contains fields typed as another struct.
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	remaining := make([]parsedStruct, len(structs))
	copy(remaining, structs)

	for {
		progress := false
		next := remaining[:0]

		for _, ps := range remaining {
			if layout, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = layout
				progress = true
			} else {
				next = append(next, ps)
			}
		}

		remaining = next
		if !progress || len(remaining) == 0 {
			break
		}
	}

	return resolved
}

// computeStructLayout computes the byte size and alignment of a single WGSL
// struct: each field is placed at the next aligned offset and the total size
// is rounded up to the struct's alignment (max alignment of all fields).
// Fields with @builtin attributes are skipped as they are not part of the
// buffer layout.
func computeStructLayout(ps parsedStruct, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	offset := uint64(0)
	maxAlign := uint64(1)

	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}

		fieldLayout, ok := resolveTypeLayout(field.typeName, knownTypes)
		if !ok {
			return wgslTypeLayout{}, false
		}

		offset = roundUpAlign(fieldLayout.align, offset)
		offset += fieldLayout.size

		if fieldLayout.align > maxAlign {
			maxAlign = fieldLayout.align
		}
	}

	return wgslTypeLayout{roundUpAlign(maxAlign, offset), maxAlign}, true
}

// resolveTypeLayout resolves a WGSL type name to its size and alignment using
// primitives and previously-computed struct layouts. Handles fixed-size
// arrays (array<T, N>) and returns false for runtime-sized arrays or unknown
// types.
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	if strings.HasPrefix(typeName, "array<") && strings.HasSuffix(typeName, ">") {
		inner := typeName[6 : len(typeName)-1]
		parts := strings.SplitN(inner, ",", 2)
		if len(parts) != 2 {
			return wgslTypeLayout{}, false
		}

		elemLayout, ok := resolveTypeLayout(strings.TrimSpace(parts[0]), knownTypes)
		if !ok {
			return wgslTypeLayout{}, false
		}
		count, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return wgslTypeLayout{}, false
		}

		stride := roundUpAlign(elemLayout.align, elemLayout.size)
		return wgslTypeLayout{count * stride, elemLayout.align}, true
	}

	return wgslTypeLayout{}, false
}

// roundUpAlign rounds value up to the next multiple of alignment.
// Alignment must be a power of two.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// stripComments removes both single-line (//) and block (/* */) comments
// from WGSL source. Block comments may be nested per the WGSL specification.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	i := 0
	for i < len(source) {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i += 2
				continue
			}
			if source[i] == '*' && source[i+1] == '/' {
				if depth > 0 {
					depth--
				}
				i += 2
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
		i++
	}
	return sb.String()
}

// splitAtTopLevelCommas splits a string at commas that are not nested inside
// angle brackets, so types like array<f32, 6> survive field splitting.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
