package extractors

import (
	"regexp"
	"strings"

	"github.com/srclens/srclens/internal/elements"
	"github.com/srclens/srclens/internal/scan"
)

// Spring marker tables. The tables are data: supporting another mapping
// annotation means adding a row, not a branch.
type springMarker struct {
	method string
	re     *regexp.Regexp
	tag    string
}

var springEndpointMarkers = []springMarker{
	{"GET", regexp.MustCompile(`@GetMapping\s*(?:\(\s*(?:value\s*=\s*|path\s*=\s*)?"([^"]*)"[^)]*\))?`), "spring:@GetMapping"},
	{"POST", regexp.MustCompile(`@PostMapping\s*(?:\(\s*(?:value\s*=\s*|path\s*=\s*)?"([^"]*)"[^)]*\))?`), "spring:@PostMapping"},
	{"PUT", regexp.MustCompile(`@PutMapping\s*(?:\(\s*(?:value\s*=\s*|path\s*=\s*)?"([^"]*)"[^)]*\))?`), "spring:@PutMapping"},
	{"DELETE", regexp.MustCompile(`@DeleteMapping\s*(?:\(\s*(?:value\s*=\s*|path\s*=\s*)?"([^"]*)"[^)]*\))?`), "spring:@DeleteMapping"},
	{"PATCH", regexp.MustCompile(`@PatchMapping\s*(?:\(\s*(?:value\s*=\s*|path\s*=\s*)?"([^"]*)"[^)]*\))?`), "spring:@PatchMapping"},
}

var (
	springControllerRe     = regexp.MustCompile(`@(RestController|Controller)\b`)
	springComponentRe      = regexp.MustCompile(`@(Service|Component|Repository)\b`)
	springEntityRe         = regexp.MustCompile(`@(Entity)\b`)
	springRequestMappingRe = regexp.MustCompile(`@RequestMapping\s*(?:\(([^)]*)\))?`)
	springMappingPathRe    = regexp.MustCompile(`"([^"]*)"`)
	springMappingMethodRe  = regexp.MustCompile(`RequestMethod\.([A-Z]+)`)
	springClassRe          = regexp.MustCompile(`\b(?:class|interface)\s+(\w+)`)
	springMethodRe         = regexp.MustCompile(`(?:public|protected)\s+(?:static\s+)?(?:final\s+)?([\w<>\[\],\.\s]+?)\s+(\w+)\s*\(`)
	springFieldRe          = regexp.MustCompile(`(?:private|protected|public)\s+(?:final\s+)?([\w<>\[\],\.]+)\s+(\w+)\s*(?:;|=)`)
	springAutowiredRe      = regexp.MustCompile(`@Autowired\b`)
	springColumnRe         = regexp.MustCompile(`@(Column|Id|GeneratedValue|JoinColumn)\b`)
	springRelationRe       = regexp.MustCompile(`@(ManyToOne|OneToMany|OneToOne|ManyToMany)\b`)
	springParamRe          = regexp.MustCompile(`@(PathVariable|RequestParam|RequestBody)(?:\s*\(([^)]*)\))?\s+([\w<>\[\],\.]+)\s+(\w+)`)
	springAnnotationRe     = regexp.MustCompile(`^\s*@\w+`)
	springGenericInnerRe   = regexp.MustCompile(`^(?:List|Set|Collection)<(\w+)>$`)
)

// SpringExtractor recognizes the Java/Spring ecosystem: controller
// routing annotations, stereotype-annotated components with @Autowired
// or constructor injection, and JPA entities.
type SpringExtractor struct{}

// NewSpring returns the Java/Spring extractor.
func NewSpring() *SpringExtractor { return &SpringExtractor{} }

func (e *SpringExtractor) Ecosystem() string    { return "spring" }
func (e *SpringExtractor) Extensions() []string { return []string{".java"} }

// springClass is a resolved annotated class: marker line, declaration
// line, and brace-delimited span.
type springClass struct {
	name      string
	markerTag string
	basePath  string
	annoLine  int // first line of the annotation block
	declLine  int
	endLine   int
}

// findAnnotatedClasses locates classes whose annotation block matches
// markerRe, resolving the owning class declaration within the lookahead
// window and the brace-delimited span.
func (e *SpringExtractor) findAnnotatedClasses(src *Source, markerRe *regexp.Regexp) []springClass {
	var classes []springClass
	for n := 1; n <= len(src.Lines); n++ {
		m := markerRe.FindStringSubmatch(src.Line(n))
		if m == nil {
			continue
		}
		declLine := 0
		name := ""
		for i := n; i <= n+declLookahead && i <= len(src.Lines); i++ {
			if cm := springClassRe.FindStringSubmatch(src.Line(i)); cm != nil {
				declLine = i
				name = cm[1]
				break
			}
		}
		if declLine == 0 {
			continue // annotation with no class in reach; not a class marker
		}
		cls := springClass{
			name:      name,
			markerTag: "spring:@" + m[1],
			annoLine:  annotationBlockStart(src, n),
			declLine:  declLine,
			endLine:   scan.BraceBlockEnd(src.Lines, declLine),
		}
		// Class-level @RequestMapping supplies the base path.
		for i := cls.annoLine; i <= declLine; i++ {
			if rm := springRequestMappingRe.FindStringSubmatch(src.Line(i)); rm != nil {
				if pm := springMappingPathRe.FindStringSubmatch(rm[1]); pm != nil {
					cls.basePath = pm[1]
				}
			}
		}
		classes = append(classes, cls)
	}
	return classes
}

// annotationBlockStart walks upward through contiguous annotation lines
// so documentation attaches above the whole block.
func annotationBlockStart(src *Source, line int) int {
	start := line
	for start > 1 && springAnnotationRe.MatchString(src.Line(start-1)) {
		start--
	}
	return start
}

// ExtractContainers returns one container per annotated controller
// class, with its endpoints held by value.
func (e *SpringExtractor) ExtractContainers(src *Source) []*elements.ContainerElement {
	var containers []*elements.ContainerElement
	for _, cls := range e.findAnnotatedClasses(src, springControllerRe) {
		container := &elements.ContainerElement{
			CodeElement: elements.CodeElement{
				Kind:       elements.KindContainer,
				Name:       cls.name,
				FilePath:   src.Path,
				StartLine:  cls.annoLine,
				EndLine:    cls.endLine,
				Doc:        scan.PrecedingDoc(src.Lines, cls.annoLine, scan.SlashComments),
				Provenance: []string{cls.markerTag},
			},
			BasePath: elements.JoinPath(cls.basePath),
		}
		for _, ep := range e.endpointsIn(src, cls.declLine, cls.endLine, cls.basePath) {
			container.Endpoints = append(container.Endpoints, *ep)
		}
		containers = append(containers, container)
	}
	return containers
}

// ExtractEndpoints returns every routed handler method. Handlers inside
// a controller get the controller's base path applied; handlers outside
// any recognized container keep their own path.
func (e *SpringExtractor) ExtractEndpoints(src *Source) []*elements.EndpointElement {
	controllers := e.findAnnotatedClasses(src, springControllerRe)

	var endpoints []*elements.EndpointElement
	covered := make(map[int]bool)
	for _, cls := range controllers {
		for _, ep := range e.endpointsIn(src, cls.declLine, cls.endLine, cls.basePath) {
			endpoints = append(endpoints, ep)
		}
		for n := cls.declLine; n <= cls.endLine; n++ {
			covered[n] = true
		}
	}

	// Mapping annotations outside any controller span still emit, so a
	// handler in a plain class is not lost.
	for _, ep := range e.endpointsIn(src, 1, len(src.Lines), "") {
		if !covered[ep.StartLine] {
			endpoints = append(endpoints, ep)
		}
	}
	return endpoints
}

// endpointsIn scans [from, to] for endpoint markers and resolves each
// into an EndpointElement with base applied.
func (e *SpringExtractor) endpointsIn(src *Source, from, to int, base string) []*elements.EndpointElement {
	if from < 1 {
		from = 1
	}
	if to > len(src.Lines) {
		to = len(src.Lines)
	}

	var endpoints []*elements.EndpointElement
	for n := from; n <= to; n++ {
		line := src.Line(n)
		for _, marker := range springEndpointMarkers {
			m := marker.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			endpoints = append(endpoints, e.buildEndpoint(src, n, marker.method, m[1], base, marker.tag))
		}

		// Method-level @RequestMapping with an explicit RequestMethod.
		if rm := springRequestMappingRe.FindStringSubmatch(line); rm != nil {
			if mm := springMappingMethodRe.FindStringSubmatch(rm[1]); mm != nil && elements.IsMethod(mm[1]) {
				sub := ""
				if pm := springMappingPathRe.FindStringSubmatch(rm[1]); pm != nil {
					sub = pm[1]
				}
				endpoints = append(endpoints, e.buildEndpoint(src, n, mm[1], sub, base, "spring:@RequestMapping"))
			}
		}
	}
	return endpoints
}

// buildEndpoint resolves the handler declaration below the marker line
// and assembles the normalized endpoint record.
func (e *SpringExtractor) buildEndpoint(src *Source, markerLine int, method, sub, base, tag string) *elements.EndpointElement {
	path := elements.JoinPath(base, sub)

	ep := &elements.EndpointElement{
		CodeElement: elements.CodeElement{
			Kind:       elements.KindEndpoint,
			Name:       synthesizeName(method, path),
			FilePath:   src.Path,
			StartLine:  markerLine,
			EndLine:    markerLine,
			Provenance: []string{tag},
		},
		Method: method,
		Path:   path,
	}

	// Owning declaration: next method header below the annotation block.
	for i := markerLine + 1; i <= markerLine+declLookahead && i <= len(src.Lines); i++ {
		line := src.Line(i)
		if springAnnotationRe.MatchString(line) {
			continue
		}
		sig := scan.ReassembleSignature(src.Lines, i)
		mm := springMethodRe.FindStringSubmatch(sig)
		if mm == nil {
			break
		}
		ep.Name = mm[2]
		ep.ReturnType = strings.TrimSpace(mm[1])
		ep.EndLine = scan.BraceBlockEnd(src.Lines, i)
		ep.Parameters = springParams(sig)
		break
	}

	ep.Doc = scan.PrecedingDoc(src.Lines, annotationBlockStart(src, markerLine), scan.SlashComments)

	// Path placeholders not bound by @PathVariable still surface.
	for _, name := range pathParamNames(path) {
		if !hasParam(ep.Parameters, name) {
			ep.Parameters = append(ep.Parameters, elements.Parameter{
				Name: name, Required: true, Role: elements.RolePath,
			})
		}
	}

	if ep.EndLine < ep.StartLine {
		ep.EndLine = ep.StartLine
	}
	return ep
}

// springParams reads the handler's parameter annotations from the
// reassembled signature.
func springParams(sig string) []elements.Parameter {
	var params []elements.Parameter
	for _, m := range springParamRe.FindAllStringSubmatch(sig, -1) {
		anno, args, typ, name := m[1], m[2], m[3], m[4]
		p := elements.Parameter{Name: name, Type: typ, Required: true}
		switch anno {
		case "PathVariable":
			p.Role = elements.RolePath
		case "RequestBody":
			p.Role = elements.RoleBody
		case "RequestParam":
			p.Role = elements.RoleQuery
			if strings.Contains(args, "required = false") || strings.Contains(args, "required=false") ||
				strings.Contains(args, "defaultValue") {
				p.Required = false
			}
		}
		params = append(params, p)
	}
	return params
}

// ExtractServices returns stereotype-annotated components with their
// public methods and injected dependency types.
func (e *SpringExtractor) ExtractServices(src *Source) []*elements.ServiceElement {
	var services []*elements.ServiceElement
	for _, cls := range e.findAnnotatedClasses(src, springComponentRe) {
		svc := &elements.ServiceElement{
			CodeElement: elements.CodeElement{
				Kind:       elements.KindService,
				Name:       cls.name,
				FilePath:   src.Path,
				StartLine:  cls.annoLine,
				EndLine:    cls.endLine,
				Doc:        scan.PrecedingDoc(src.Lines, cls.annoLine, scan.SlashComments),
				Provenance: []string{cls.markerTag},
			},
		}

		for n := cls.declLine + 1; n <= cls.endLine; n++ {
			line := src.Line(n)

			// Field injection: @Autowired on the same or preceding line.
			if fm := springFieldRe.FindStringSubmatch(line); fm != nil {
				if springAutowiredRe.MatchString(line) || springAutowiredRe.MatchString(src.Line(n-1)) {
					svc.Dependencies = appendUnique(svc.Dependencies, fm[1])
				}
				continue
			}

			if mm := springMethodRe.FindStringSubmatch(line); mm != nil && mm[2] != cls.name {
				svc.Methods = appendUnique(svc.Methods, mm[2])
			}

			// Constructor injection: parameter types of the constructor.
			if strings.Contains(line, cls.name+"(") && !strings.Contains(line, "new "+cls.name) {
				sig := scan.ReassembleSignature(src.Lines, n)
				for _, dep := range constructorParamTypes(sig, cls.name) {
					svc.Dependencies = appendUnique(svc.Dependencies, dep)
				}
			}
		}
		services = append(services, svc)
	}
	return services
}

// constructorParamTypes splits "Type name, Type name" out of a
// constructor signature.
func constructorParamTypes(sig, className string) []string {
	open := strings.Index(sig, className+"(")
	if open < 0 {
		return nil
	}
	rest := sig[open+len(className)+1:]
	closeIdx := strings.Index(rest, ")")
	if closeIdx < 0 {
		return nil
	}
	var types []string
	for _, part := range strings.Split(rest[:closeIdx], ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) >= 2 {
			types = append(types, fields[len(fields)-2])
		}
	}
	return types
}

// ExtractModels returns JPA entities with their columns and
// relationship descriptors.
func (e *SpringExtractor) ExtractModels(src *Source) []*elements.ModelElement {
	var models []*elements.ModelElement
	for _, cls := range e.findAnnotatedClasses(src, springEntityRe) {
		model := &elements.ModelElement{
			CodeElement: elements.CodeElement{
				Kind:       elements.KindModel,
				Name:       cls.name,
				FilePath:   src.Path,
				StartLine:  cls.annoLine,
				EndLine:    cls.endLine,
				Doc:        scan.PrecedingDoc(src.Lines, cls.annoLine, scan.SlashComments),
				Provenance: []string{"spring:@Entity"},
			},
		}

		pendingRelation := ""
		pendingColumn := false
		for n := cls.declLine + 1; n <= cls.endLine; n++ {
			line := src.Line(n)

			if rm := springRelationRe.FindStringSubmatch(line); rm != nil {
				pendingRelation = rm[1]
			}
			if springColumnRe.MatchString(line) {
				pendingColumn = true
			}

			fm := springFieldRe.FindStringSubmatch(line)
			if fm == nil {
				continue
			}
			fieldType, fieldName := fm[1], fm[2]

			field := elements.FieldInfo{Name: fieldName, Type: fieldType}
			if pendingColumn {
				field.Provenance = []string{"spring:@Column"}
			}
			model.Fields = append(model.Fields, field)

			if pendingRelation != "" {
				target := fieldType
				if gm := springGenericInnerRe.FindStringSubmatch(fieldType); gm != nil {
					target = gm[1]
				}
				model.Relationships = append(model.Relationships, pendingRelation+" -> "+target)
			}
			pendingRelation = ""
			pendingColumn = false
		}
		models = append(models, model)
	}
	return models
}
