package extractors

import (
	"regexp"
	"strings"

	"github.com/srclens/srclens/internal/elements"
	"github.com/srclens/srclens/internal/scan"
)

// TypeScript marker tables: NestJS route decorators plus Express-style
// registrations, Injectable services, and TypeORM entities.
type nestMarker struct {
	method string
	re     *regexp.Regexp
	tag    string
}

var nestEndpointMarkers = []nestMarker{
	{"GET", regexp.MustCompile(`@Get\s*\(\s*(?:['"]([^'"]*)['"])?\s*\)`), "nest:@Get"},
	{"POST", regexp.MustCompile(`@Post\s*\(\s*(?:['"]([^'"]*)['"])?\s*\)`), "nest:@Post"},
	{"PUT", regexp.MustCompile(`@Put\s*\(\s*(?:['"]([^'"]*)['"])?\s*\)`), "nest:@Put"},
	{"DELETE", regexp.MustCompile(`@Delete\s*\(\s*(?:['"]([^'"]*)['"])?\s*\)`), "nest:@Delete"},
	{"PATCH", regexp.MustCompile(`@Patch\s*\(\s*(?:['"]([^'"]*)['"])?\s*\)`), "nest:@Patch"},
	{"HEAD", regexp.MustCompile(`@Head\s*\(\s*(?:['"]([^'"]*)['"])?\s*\)`), "nest:@Head"},
	{"OPTIONS", regexp.MustCompile(`@Options\s*\(\s*(?:['"]([^'"]*)['"])?\s*\)`), "nest:@Options"},
}

var (
	nestExpressRe    = regexp.MustCompile(`\b(?:app|router)\.(get|post|put|delete|patch)\s*\(\s*['"]([^'"]+)['"]`)
	nestControllerRe = regexp.MustCompile(`@(Controller)\s*\(\s*(?:['"]([^'"]*)['"])?\s*\)`)
	nestServiceRe    = regexp.MustCompile(`@(Injectable)\s*\(`)
	nestEntityRe     = regexp.MustCompile(`@(Entity)\s*\(`)
	nestClassRe      = regexp.MustCompile(`\bclass\s+(\w+)`)
	nestMethodRe     = regexp.MustCompile(`^\s*(?:public\s+|private\s+|protected\s+)?(?:async\s+)?(\w+)\s*\(`)
	nestReturnRe     = regexp.MustCompile(`\)\s*:\s*([\w<>\[\]\s,\.]+?)\s*\{`)
	nestParamDecoRe  = regexp.MustCompile(`@(Param|Query|Body)\s*\(\s*(?:['"](\w+)['"])?\s*\)\s*(\w+)(\??)\s*:\s*([\w<>\[\]\.]+)`)
	nestCtorParamRe  = regexp.MustCompile(`(?:private|public|protected)\s+(?:readonly\s+)?\w+\s*:\s*([\w<>\[\]\.]+)`)
	nestColumnRe     = regexp.MustCompile(`@(PrimaryGeneratedColumn|PrimaryColumn|Column|CreateDateColumn|UpdateDateColumn)\b`)
	nestRelationRe   = regexp.MustCompile(`@(ManyToOne|OneToMany|OneToOne|ManyToMany)\s*\(\s*\(\)\s*=>\s*(\w+)`)
	nestFieldRe      = regexp.MustCompile(`^\s*(?:readonly\s+)?(\w+)(\??)\s*:\s*([\w<>\[\]\.\s|]+?)\s*;`)
	nestDecoratorRe  = regexp.MustCompile(`^\s*@\w+`)
)

// nestKeywords are tokens the method regex must not mistake for handler
// names.
var nestKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true,
	"catch": true, "return": true, "constructor": true, "new": true,
}

// NestExtractor recognizes the TypeScript ecosystem: NestJS controllers
// and providers, TypeORM entities, and bare Express route registrations.
type NestExtractor struct{}

// NewNest returns the TypeScript/NestJS extractor.
func NewNest() *NestExtractor { return &NestExtractor{} }

func (e *NestExtractor) Ecosystem() string    { return "nest" }
func (e *NestExtractor) Extensions() []string { return []string{".ts", ".tsx"} }

type nestClass struct {
	name      string
	markerTag string
	basePath  string
	decoLine  int
	declLine  int
	endLine   int
}

func (e *NestExtractor) findDecoratedClasses(src *Source, markerRe *regexp.Regexp) []nestClass {
	var classes []nestClass
	for n := 1; n <= len(src.Lines); n++ {
		m := markerRe.FindStringSubmatch(src.Line(n))
		if m == nil {
			continue
		}
		declLine, name := 0, ""
		for i := n; i <= n+declLookahead && i <= len(src.Lines); i++ {
			if cm := nestClassRe.FindStringSubmatch(src.Line(i)); cm != nil {
				declLine, name = i, cm[1]
				break
			}
		}
		if declLine == 0 {
			continue
		}
		cls := nestClass{
			name:      name,
			markerTag: "nest:@" + m[1],
			decoLine:  decoratorBlockStart(src, n),
			declLine:  declLine,
			endLine:   scan.BraceBlockEnd(src.Lines, declLine),
		}
		if len(m) > 2 {
			cls.basePath = m[2]
		}
		classes = append(classes, cls)
	}
	return classes
}

func decoratorBlockStart(src *Source, line int) int {
	start := line
	for start > 1 && nestDecoratorRe.MatchString(src.Line(start-1)) {
		start--
	}
	return start
}

// ExtractContainers returns one container per @Controller class.
func (e *NestExtractor) ExtractContainers(src *Source) []*elements.ContainerElement {
	var containers []*elements.ContainerElement
	for _, cls := range e.findDecoratedClasses(src, nestControllerRe) {
		container := &elements.ContainerElement{
			CodeElement: elements.CodeElement{
				Kind:       elements.KindContainer,
				Name:       cls.name,
				FilePath:   src.Path,
				StartLine:  cls.decoLine,
				EndLine:    cls.endLine,
				Doc:        scan.PrecedingDoc(src.Lines, cls.decoLine, scan.SlashComments),
				Provenance: []string{cls.markerTag},
			},
			BasePath: elements.JoinPath(cls.basePath),
		}
		for _, ep := range e.decoratedEndpointsIn(src, cls.declLine, cls.endLine, cls.basePath) {
			container.Endpoints = append(container.Endpoints, *ep)
		}
		containers = append(containers, container)
	}
	return containers
}

// ExtractEndpoints returns decorator-routed handlers (base path applied)
// plus Express-style registrations anywhere in the file.
func (e *NestExtractor) ExtractEndpoints(src *Source) []*elements.EndpointElement {
	var endpoints []*elements.EndpointElement
	covered := make(map[int]bool)
	for _, cls := range e.findDecoratedClasses(src, nestControllerRe) {
		for _, ep := range e.decoratedEndpointsIn(src, cls.declLine, cls.endLine, cls.basePath) {
			endpoints = append(endpoints, ep)
		}
		for n := cls.declLine; n <= cls.endLine; n++ {
			covered[n] = true
		}
	}
	for _, ep := range e.decoratedEndpointsIn(src, 1, len(src.Lines), "") {
		if !covered[ep.StartLine] {
			endpoints = append(endpoints, ep)
		}
	}

	// Express registrations carry their own full path.
	for n := 1; n <= len(src.Lines); n++ {
		for _, m := range nestExpressRe.FindAllStringSubmatch(src.Line(n), -1) {
			method := strings.ToUpper(m[1])
			path := elements.JoinPath(m[2])
			ep := &elements.EndpointElement{
				CodeElement: elements.CodeElement{
					Kind:       elements.KindEndpoint,
					Name:       synthesizeName(method, path),
					FilePath:   src.Path,
					StartLine:  n,
					EndLine:    scan.BraceBlockEnd(src.Lines, n),
					Doc:        scan.PrecedingDoc(src.Lines, n, scan.SlashComments),
					Provenance: []string{"express:" + m[1]},
				},
				Method: method,
				Path:   path,
			}
			for _, name := range pathParamNames(path) {
				ep.Parameters = append(ep.Parameters, elements.Parameter{
					Name: name, Required: true, Role: elements.RolePath,
				})
			}
			endpoints = append(endpoints, ep)
		}
	}
	return endpoints
}

func (e *NestExtractor) decoratedEndpointsIn(src *Source, from, to int, base string) []*elements.EndpointElement {
	if from < 1 {
		from = 1
	}
	if to > len(src.Lines) {
		to = len(src.Lines)
	}

	var endpoints []*elements.EndpointElement
	for n := from; n <= to; n++ {
		line := src.Line(n)
		for _, marker := range nestEndpointMarkers {
			m := marker.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			endpoints = append(endpoints, e.buildEndpoint(src, n, marker.method, m[1], base, marker.tag))
		}
	}
	return endpoints
}

func (e *NestExtractor) buildEndpoint(src *Source, markerLine int, method, sub, base, tag string) *elements.EndpointElement {
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

	for i := markerLine + 1; i <= markerLine+declLookahead && i <= len(src.Lines); i++ {
		line := src.Line(i)
		if nestDecoratorRe.MatchString(line) {
			continue
		}
		mm := nestMethodRe.FindStringSubmatch(line)
		if mm == nil || nestKeywords[mm[1]] {
			break
		}
		sig := scan.ReassembleSignature(src.Lines, i)
		ep.Name = mm[1]
		if rm := nestReturnRe.FindStringSubmatch(sig); rm != nil {
			ep.ReturnType = strings.TrimSpace(rm[1])
		}
		ep.EndLine = scan.BraceBlockEnd(src.Lines, i)
		ep.Parameters = nestParams(sig)
		break
	}

	ep.Doc = scan.PrecedingDoc(src.Lines, decoratorBlockStart(src, markerLine), scan.SlashComments)

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

// nestParams reads @Param/@Query/@Body decorators out of the handler
// signature. A ? suffix on the binding name marks the parameter optional.
func nestParams(sig string) []elements.Parameter {
	var params []elements.Parameter
	for _, m := range nestParamDecoRe.FindAllStringSubmatch(sig, -1) {
		deco, bound, name, optional, typ := m[1], m[2], m[3], m[4], m[5]
		if bound != "" {
			name = bound
		}
		p := elements.Parameter{Name: name, Type: typ, Required: optional != "?"}
		switch deco {
		case "Param":
			p.Role = elements.RolePath
		case "Query":
			p.Role = elements.RoleQuery
		case "Body":
			p.Role = elements.RoleBody
		}
		params = append(params, p)
	}
	return params
}

// ExtractServices returns @Injectable providers with constructor-injected
// dependency types and public method names.
func (e *NestExtractor) ExtractServices(src *Source) []*elements.ServiceElement {
	var services []*elements.ServiceElement
	for _, cls := range e.findDecoratedClasses(src, nestServiceRe) {
		svc := &elements.ServiceElement{
			CodeElement: elements.CodeElement{
				Kind:       elements.KindService,
				Name:       cls.name,
				FilePath:   src.Path,
				StartLine:  cls.decoLine,
				EndLine:    cls.endLine,
				Doc:        scan.PrecedingDoc(src.Lines, cls.decoLine, scan.SlashComments),
				Provenance: []string{cls.markerTag},
			},
		}

		for n := cls.declLine + 1; n <= cls.endLine; n++ {
			line := src.Line(n)
			mm := nestMethodRe.FindStringSubmatch(line)
			if mm == nil {
				continue
			}
			if mm[1] == "constructor" {
				sig := scan.ReassembleSignature(src.Lines, n)
				for _, cm := range nestCtorParamRe.FindAllStringSubmatch(sig, -1) {
					svc.Dependencies = appendUnique(svc.Dependencies, cm[1])
				}
				continue
			}
			if nestKeywords[mm[1]] || strings.Contains(line, "private ") {
				continue
			}
			svc.Methods = appendUnique(svc.Methods, mm[1])
		}
		services = append(services, svc)
	}
	return services
}

// ExtractModels returns TypeORM entities with columns and relationship
// descriptors taken from the relation decorator's arrow target.
func (e *NestExtractor) ExtractModels(src *Source) []*elements.ModelElement {
	var models []*elements.ModelElement
	for _, cls := range e.findDecoratedClasses(src, nestEntityRe) {
		model := &elements.ModelElement{
			CodeElement: elements.CodeElement{
				Kind:       elements.KindModel,
				Name:       cls.name,
				FilePath:   src.Path,
				StartLine:  cls.decoLine,
				EndLine:    cls.endLine,
				Doc:        scan.PrecedingDoc(src.Lines, cls.decoLine, scan.SlashComments),
				Provenance: []string{"nest:@Entity"},
			},
		}

		pendingColumn := ""
		for n := cls.declLine + 1; n <= cls.endLine; n++ {
			line := src.Line(n)

			if rm := nestRelationRe.FindStringSubmatch(line); rm != nil {
				model.Relationships = append(model.Relationships, rm[1]+" -> "+rm[2])
				pendingColumn = "nest:@" + rm[1]
				continue
			}
			if cm := nestColumnRe.FindStringSubmatch(line); cm != nil {
				pendingColumn = "nest:@" + cm[1]
				continue
			}

			fm := nestFieldRe.FindStringSubmatch(line)
			if fm == nil {
				if !nestDecoratorRe.MatchString(line) {
					pendingColumn = ""
				}
				continue
			}
			field := elements.FieldInfo{Name: fm[1], Type: strings.TrimSpace(fm[3])}
			if pendingColumn != "" {
				field.Provenance = []string{pendingColumn}
			}
			model.Fields = append(model.Fields, field)
			pendingColumn = ""
		}
		models = append(models, model)
	}
	return models
}
