package extractors

import (
	"regexp"
	"strings"

	"github.com/srclens/srclens/internal/elements"
	"github.com/srclens/srclens/internal/scan"
)

// Python marker tables: Flask/FastAPI routing, Blueprint/APIRouter
// containers, Django and SQLAlchemy models. Blocks are delimited by
// indentation, docs come from # runs above or a docstring below.
var (
	pyRouteRe     = regexp.MustCompile(`@(\w+)\.route\s*\(\s*['"]([^'"]+)['"]`)
	pyMethodsRe   = regexp.MustCompile(`methods\s*=\s*\[([^\]]*)\]`)
	pyShorthandRe = regexp.MustCompile(`@(\w+)\.(get|post|put|delete|patch|head|options)\s*\(\s*['"]([^'"]+)['"]`)
	pyRouterRe    = regexp.MustCompile(`^(\w+)\s*=\s*APIRouter\s*\(`)
	pyBlueprintRe = regexp.MustCompile(`^(\w+)\s*=\s*Blueprint\s*\(`)
	pyPrefixRe    = regexp.MustCompile(`(?:prefix|url_prefix)\s*=\s*['"]([^'"]+)['"]`)
	pyDefRe       = regexp.MustCompile(`^\s*(?:async\s+)?def\s+(\w+)\s*\(`)
	pyReturnRe    = regexp.MustCompile(`->\s*([^:]+?)\s*:\s*$`)
	pyClassRe     = regexp.MustCompile(`^\s*class\s+(\w+)\s*(?:\(([^)]*)\))?\s*:`)
	pyDependsRe   = regexp.MustCompile(`Depends\s*\(`)
	pyDjangoRe    = regexp.MustCompile(`(\w+)\s*=\s*models\.(\w+)\s*\(\s*(?:['"]?(\w+)['"]?)?`)
	pyColumnRe    = regexp.MustCompile(`(\w+)\s*=\s*(?:db\.)?Column\s*\(\s*(?:db\.)?([\w\.]+)`)
	pyRelationRe  = regexp.MustCompile(`(\w+)\s*=\s*(?:db\.)?relationship\s*\(\s*['"]?(\w+)`)
	pyFKRe        = regexp.MustCompile(`ForeignKey\s*\(\s*['"](\w+)`)
	pyDecoratorRe = regexp.MustCompile(`^\s*@\w+`)
)

var pyDjangoRelations = map[string]string{
	"ForeignKey":      "ForeignKey",
	"OneToOneField":   "OneToOne",
	"ManyToManyField": "ManyToMany",
}

// PythonExtractor recognizes the Python ecosystem: Flask and FastAPI
// routing, Blueprint/APIRouter containers, typed-constructor services,
// Django and SQLAlchemy models.
type PythonExtractor struct{}

// NewPython returns the Python extractor.
func NewPython() *PythonExtractor { return &PythonExtractor{} }

func (e *PythonExtractor) Ecosystem() string    { return "python" }
func (e *PythonExtractor) Extensions() []string { return []string{".py"} }

// pyContainer is a router/blueprint assignment. Its variable name binds
// decorators anywhere in the file to this container's prefix.
type pyContainer struct {
	varName  string
	prefix   string
	line     int
	provTag  string
	ctorName string
}

func (e *PythonExtractor) findContainers(src *Source) []pyContainer {
	var containers []pyContainer
	for n := 1; n <= len(src.Lines); n++ {
		line := src.Line(n)
		var m []string
		tag, ctor := "", ""
		if m = pyRouterRe.FindStringSubmatch(line); m != nil {
			tag, ctor = "python:APIRouter", "APIRouter"
		} else if m = pyBlueprintRe.FindStringSubmatch(line); m != nil {
			tag, ctor = "python:Blueprint", "Blueprint"
		} else {
			continue
		}
		sig := scan.ReassembleSignature(src.Lines, n)
		c := pyContainer{varName: m[1], line: n, provTag: tag, ctorName: ctor}
		if pm := pyPrefixRe.FindStringSubmatch(sig); pm != nil {
			c.prefix = pm[1]
		}
		containers = append(containers, c)
	}
	return containers
}

func (e *PythonExtractor) prefixFor(containers []pyContainer, varName string) string {
	for _, c := range containers {
		if c.varName == varName {
			return c.prefix
		}
	}
	return ""
}

// ExtractContainers returns one container per APIRouter/Blueprint
// assignment, holding the routes registered on its variable.
func (e *PythonExtractor) ExtractContainers(src *Source) []*elements.ContainerElement {
	containers := e.findContainers(src)
	endpoints := e.extractAll(src, containers)

	var out []*elements.ContainerElement
	for _, c := range containers {
		container := &elements.ContainerElement{
			CodeElement: elements.CodeElement{
				Kind:       elements.KindContainer,
				Name:       c.varName,
				FilePath:   src.Path,
				StartLine:  c.line,
				EndLine:    c.line,
				Doc:        scan.PrecedingDoc(src.Lines, c.line, scan.HashComments),
				Provenance: []string{c.provTag},
			},
			BasePath: elements.JoinPath(c.prefix),
		}
		for _, ep := range endpoints {
			if epVar(ep) == c.varName {
				container.Endpoints = append(container.Endpoints, *ep)
			}
		}
		out = append(out, container)
	}
	return out
}

// epVar recovers the decorator variable an endpoint was registered on
// from its provenance tag ("python:router.get" -> "router").
func epVar(ep *elements.EndpointElement) string {
	for _, tag := range ep.Provenance {
		rest, ok := strings.CutPrefix(tag, "python:")
		if !ok {
			continue
		}
		if v, _, ok := strings.Cut(rest, "."); ok {
			return v
		}
	}
	return ""
}

// ExtractEndpoints returns every routed handler in the file with any
// container prefix already applied.
func (e *PythonExtractor) ExtractEndpoints(src *Source) []*elements.EndpointElement {
	return e.extractAll(src, e.findContainers(src))
}

func (e *PythonExtractor) extractAll(src *Source, containers []pyContainer) []*elements.EndpointElement {
	var endpoints []*elements.EndpointElement
	for n := 1; n <= len(src.Lines); n++ {
		line := src.Line(n)

		if m := pyRouteRe.FindStringSubmatch(line); m != nil {
			varName, sub := m[1], m[2]
			base := e.prefixFor(containers, varName)
			sig := scan.ReassembleSignature(src.Lines, n)
			methods := []string{"GET"}
			if mm := pyMethodsRe.FindStringSubmatch(sig); mm != nil {
				methods = splitMethods(mm[1])
			}
			for _, method := range methods {
				endpoints = append(endpoints, e.buildEndpoint(src, n, method, sub, base,
					"python:"+varName+".route"))
			}
			continue
		}
		if m := pyShorthandRe.FindStringSubmatch(line); m != nil {
			varName, verb, sub := m[1], m[2], m[3]
			base := e.prefixFor(containers, varName)
			endpoints = append(endpoints, e.buildEndpoint(src, n, strings.ToUpper(verb), sub, base,
				"python:"+varName+"."+verb))
		}
	}
	return endpoints
}

func splitMethods(raw string) []string {
	var methods []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.Trim(strings.TrimSpace(part), `'"`)
		if part == "" {
			continue
		}
		methods = append(methods, strings.ToUpper(part))
	}
	if len(methods) == 0 {
		methods = []string{"GET"}
	}
	return methods
}

func (e *PythonExtractor) buildEndpoint(src *Source, markerLine int, method, sub, base, tag string) *elements.EndpointElement {
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

	pathParams := pathParamNames(path)
	for i := markerLine + 1; i <= markerLine+declLookahead && i <= len(src.Lines); i++ {
		line := src.Line(i)
		if pyDecoratorRe.MatchString(line) {
			continue
		}
		dm := pyDefRe.FindStringSubmatch(line)
		if dm == nil {
			break
		}
		sig := scan.ReassembleSignature(src.Lines, i)
		ep.Name = dm[1]
		if rm := pyReturnRe.FindStringSubmatch(sig); rm != nil {
			ep.ReturnType = strings.TrimSpace(rm[1])
		}
		ep.EndLine = scan.IndentBlockEnd(src.Lines, i)
		ep.Parameters = pySignatureParams(sig, pathParams)
		ep.Doc = scan.Docstring(src.Lines, i)
		break
	}

	if ep.Doc == "" {
		ep.Doc = scan.PrecedingDoc(src.Lines, pyDecoratorStart(src, markerLine), scan.HashComments)
	}
	for _, name := range pathParams {
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

func pyDecoratorStart(src *Source, line int) int {
	start := line
	for start > 1 && pyDecoratorRe.MatchString(src.Line(start-1)) {
		start--
	}
	return start
}

// pySignatureParams reads annotated handler arguments. Placeholder names
// bind as path parameters, the rest default to query; a default value
// makes the parameter optional, and Depends(...) arguments are wiring,
// not request parameters.
func pySignatureParams(sig string, pathParams []string) []elements.Parameter {
	open := strings.Index(sig, "(")
	end := strings.LastIndex(sig, ")")
	if open < 0 || end <= open {
		return nil
	}

	var params []elements.Parameter
	for _, arg := range splitTopLevel(sig[open+1 : end]) {
		arg = strings.TrimSpace(arg)
		if arg == "" || arg == "self" || strings.HasPrefix(arg, "*") {
			continue
		}
		if pyDependsRe.MatchString(arg) {
			continue
		}
		name, rest, hasAnno := strings.Cut(arg, ":")
		name = strings.TrimSpace(name)
		p := elements.Parameter{Name: name, Required: true, Role: elements.RoleQuery}
		if hasAnno {
			typ, _, hasDefault := strings.Cut(rest, "=")
			p.Type = strings.TrimSpace(typ)
			p.Required = !hasDefault
		} else if base, _, hasDefault := strings.Cut(name, "="); hasDefault {
			p.Name = strings.TrimSpace(base)
			p.Required = false
		}
		for _, pp := range pathParams {
			if pp == p.Name {
				p.Role = elements.RolePath
				p.Required = true
			}
		}
		params = append(params, p)
	}
	return params
}

// splitTopLevel splits an argument list on commas outside brackets, so
// annotations like Dict[str, int] survive intact.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
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

type pyClass struct {
	name     string
	bases    string
	declLine int
	endLine  int
}

func (e *PythonExtractor) findClasses(src *Source) []pyClass {
	var classes []pyClass
	for n := 1; n <= len(src.Lines); n++ {
		m := pyClassRe.FindStringSubmatch(src.Line(n))
		if m == nil {
			continue
		}
		classes = append(classes, pyClass{
			name:     m[1],
			bases:    m[2],
			declLine: n,
			endLine:  scan.IndentBlockEnd(src.Lines, n),
		})
	}
	return classes
}

func (c pyClass) isModel() bool {
	return strings.Contains(c.bases, "models.Model") ||
		strings.Contains(c.bases, "db.Model") ||
		strings.Contains(c.bases, "Base")
}

// ExtractServices returns classes whose __init__ declares annotated
// dependencies. Model classes are excluded even when annotated.
func (e *PythonExtractor) ExtractServices(src *Source) []*elements.ServiceElement {
	var services []*elements.ServiceElement
	for _, cls := range e.findClasses(src) {
		if cls.isModel() {
			continue
		}

		var deps, methods []string
		usesDepends := false
		for n := cls.declLine + 1; n <= cls.endLine; n++ {
			line := src.Line(n)
			dm := pyDefRe.FindStringSubmatch(line)
			if dm == nil {
				continue
			}
			if dm[1] == "__init__" {
				sig := scan.ReassembleSignature(src.Lines, n)
				for _, p := range pySignatureParams(sig, nil) {
					if p.Type != "" {
						deps = appendUnique(deps, p.Type)
					}
				}
				continue
			}
			if pyDependsRe.MatchString(scan.ReassembleSignature(src.Lines, n)) {
				usesDepends = true
			}
			if !strings.HasPrefix(dm[1], "_") {
				methods = appendUnique(methods, dm[1])
			}
		}
		if len(deps) == 0 && !usesDepends {
			continue
		}

		tag := "python:__init__"
		if len(deps) == 0 {
			tag = "python:Depends"
		}
		svc := &elements.ServiceElement{
			CodeElement: elements.CodeElement{
				Kind:       elements.KindService,
				Name:       cls.name,
				FilePath:   src.Path,
				StartLine:  cls.declLine,
				EndLine:    cls.endLine,
				Provenance: []string{tag},
			},
			Methods:      methods,
			Dependencies: deps,
		}
		svc.Doc = scan.Docstring(src.Lines, cls.declLine)
		if svc.Doc == "" {
			svc.Doc = scan.PrecedingDoc(src.Lines, cls.declLine, scan.HashComments)
		}
		services = append(services, svc)
	}
	return services
}

// ExtractModels returns Django model and SQLAlchemy declarative classes
// with fields and relationship descriptors.
func (e *PythonExtractor) ExtractModels(src *Source) []*elements.ModelElement {
	var models []*elements.ModelElement
	for _, cls := range e.findClasses(src) {
		if !cls.isModel() {
			continue
		}

		tag := "python:declarative"
		if strings.Contains(cls.bases, "models.Model") {
			tag = "python:models.Model"
		}
		model := &elements.ModelElement{
			CodeElement: elements.CodeElement{
				Kind:       elements.KindModel,
				Name:       cls.name,
				FilePath:   src.Path,
				StartLine:  cls.declLine,
				EndLine:    cls.endLine,
				Provenance: []string{tag},
			},
		}
		model.Doc = scan.Docstring(src.Lines, cls.declLine)
		if model.Doc == "" {
			model.Doc = scan.PrecedingDoc(src.Lines, cls.declLine, scan.HashComments)
		}

		for n := cls.declLine + 1; n <= cls.endLine; n++ {
			line := src.Line(n)

			if m := pyDjangoRe.FindStringSubmatch(line); m != nil {
				field := elements.FieldInfo{
					Name:       m[1],
					Type:       m[2],
					Provenance: []string{"python:models." + m[2]},
				}
				model.Fields = append(model.Fields, field)
				if kind, ok := pyDjangoRelations[m[2]]; ok && m[3] != "" {
					model.Relationships = append(model.Relationships, kind+" -> "+m[3])
				}
				continue
			}
			if m := pyRelationRe.FindStringSubmatch(line); m != nil {
				model.Fields = append(model.Fields, elements.FieldInfo{
					Name:       m[1],
					Type:       m[2],
					Provenance: []string{"python:relationship"},
				})
				model.Relationships = append(model.Relationships, "relationship -> "+m[2])
				continue
			}
			if m := pyColumnRe.FindStringSubmatch(line); m != nil {
				model.Fields = append(model.Fields, elements.FieldInfo{
					Name:       m[1],
					Type:       m[2],
					Provenance: []string{"python:Column"},
				})
				if fk := pyFKRe.FindStringSubmatch(line); fk != nil {
					model.Relationships = append(model.Relationships, "ForeignKey -> "+fk[1])
				}
			}
		}
		models = append(models, model)
	}
	return models
}
