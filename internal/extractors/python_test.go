package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srclens/srclens/internal/elements"
)

// Test Plan for the Python extractor:
// - APIRouter/Blueprint assignments become containers with prefixes
// - Shorthand decorators resolve the handler, docstring, and span
// - route(methods=[...]) emits one endpoint per method
// - Handler arguments bind as path/query params; Depends is skipped
// - Typed __init__ classes become services; model bases are excluded
// - Django and SQLAlchemy models collect fields and relationships

const pyRouterSrc = `router = APIRouter(prefix="/api/users")


@router.get("/{user_id}")
async def get_user(user_id: int, db: Session = Depends(get_db)) -> UserOut:
    """Fetch one user."""
    return db.get(User, user_id)


@router.post("/")
def create_user(payload: UserCreate):
    return save(payload)
`

func TestPython_RouterContainer(t *testing.T) {
	t.Parallel()

	src := NewSource("users.py", pyRouterSrc)
	containers := NewPython().ExtractContainers(src)

	require.Len(t, containers, 1)
	c := containers[0]
	assert.Equal(t, "router", c.Name)
	assert.Equal(t, "/api/users", c.BasePath)
	assert.Equal(t, []string{"python:APIRouter"}, c.Provenance)
	assert.Len(t, c.Endpoints, 2)
}

func TestPython_FastAPIEndpoints(t *testing.T) {
	t.Parallel()

	src := NewSource("users.py", pyRouterSrc)
	endpoints := NewPython().ExtractEndpoints(src)
	require.Len(t, endpoints, 2)

	get := endpoints[0]
	assert.Equal(t, "get_user", get.Name)
	assert.Equal(t, "GET", get.Method)
	assert.Equal(t, "/api/users/{user_id}", get.Path)
	assert.Equal(t, "UserOut", get.ReturnType)
	assert.Equal(t, "Fetch one user.", get.Doc)
	assert.Equal(t, 4, get.StartLine)
	assert.Equal(t, 7, get.EndLine)
	// The Depends(...) argument is wiring, not a request parameter.
	require.Len(t, get.Parameters, 1)
	assert.Equal(t, "user_id", get.Parameters[0].Name)
	assert.Equal(t, "int", get.Parameters[0].Type)
	assert.Equal(t, elements.RolePath, get.Parameters[0].Role)
	assert.True(t, get.Parameters[0].Required)

	create := endpoints[1]
	assert.Equal(t, "create_user", create.Name)
	assert.Equal(t, "POST", create.Method)
	assert.Equal(t, "/api/users", create.Path)
	require.Len(t, create.Parameters, 1)
	assert.Equal(t, "payload", create.Parameters[0].Name)
	assert.Equal(t, elements.RoleQuery, create.Parameters[0].Role)
}

func TestPython_FlaskRouteMethods(t *testing.T) {
	t.Parallel()

	src := NewSource("billing.py", `bp = Blueprint("billing", __name__, url_prefix="/billing")

# Create an invoice.
@bp.route("/invoices", methods=["POST", "PUT"])
def create_invoice():
    return make_invoice()
`)
	endpoints := NewPython().ExtractEndpoints(src)

	require.Len(t, endpoints, 2)
	assert.Equal(t, "POST", endpoints[0].Method)
	assert.Equal(t, "PUT", endpoints[1].Method)
	for _, ep := range endpoints {
		assert.Equal(t, "create_invoice", ep.Name)
		assert.Equal(t, "/billing/invoices", ep.Path)
		assert.Equal(t, "Create an invoice.", ep.Doc)
	}

	containers := NewPython().ExtractContainers(src)
	require.Len(t, containers, 1)
	assert.Equal(t, "bp", containers[0].Name)
	assert.Equal(t, "/billing", containers[0].BasePath)
	assert.Len(t, containers[0].Endpoints, 2)
}

func TestPython_RouteDefaultsToGet(t *testing.T) {
	t.Parallel()

	src := NewSource("app.py", `@app.route("/ping")
def ping():
    return "pong"
`)
	endpoints := NewPython().ExtractEndpoints(src)

	require.Len(t, endpoints, 1)
	assert.Equal(t, "GET", endpoints[0].Method)
	assert.Equal(t, "/ping", endpoints[0].Path)
}

func TestPython_Services(t *testing.T) {
	t.Parallel()

	src := NewSource("billing_service.py", `class BillingService:
    """Coordinates invoicing."""

    def __init__(self, repo: InvoiceRepo, clock: Clock):
        self.repo = repo

    def issue(self, order_id: int):
        return self.repo.create(order_id)

    def _audit(self):
        pass
`)
	services := NewPython().ExtractServices(src)

	require.Len(t, services, 1)
	svc := services[0]
	assert.Equal(t, "BillingService", svc.Name)
	assert.Equal(t, "Coordinates invoicing.", svc.Doc)
	assert.Equal(t, []string{"python:__init__"}, svc.Provenance)
	assert.Equal(t, []string{"InvoiceRepo", "Clock"}, svc.Dependencies)
	assert.Equal(t, []string{"issue"}, svc.Methods)
}

func TestPython_Models(t *testing.T) {
	t.Parallel()

	src := NewSource("models.py", `class Invoice(models.Model):
    number = models.CharField(max_length=20)
    customer = models.ForeignKey("Customer", on_delete=models.CASCADE)
    tags = models.ManyToManyField(Tag)


class Payment(Base):
    __tablename__ = "payments"
    id = Column(Integer, primary_key=True)
    invoice_id = Column(Integer, ForeignKey("invoices.id"))
    invoice = relationship("Invoice", back_populates="payments")
`)
	models := NewPython().ExtractModels(src)
	require.Len(t, models, 2)

	invoice := models[0]
	assert.Equal(t, "Invoice", invoice.Name)
	assert.Equal(t, []string{"python:models.Model"}, invoice.Provenance)
	require.Len(t, invoice.Fields, 3)
	assert.Equal(t, "number", invoice.Fields[0].Name)
	assert.Equal(t, "CharField", invoice.Fields[0].Type)
	assert.Equal(t, []string{"ForeignKey -> Customer", "ManyToMany -> Tag"}, invoice.Relationships)

	payment := models[1]
	assert.Equal(t, "Payment", payment.Name)
	assert.Equal(t, []string{"python:declarative"}, payment.Provenance)
	require.Len(t, payment.Fields, 3)
	assert.Equal(t, "id", payment.Fields[0].Name)
	assert.Equal(t, "Integer", payment.Fields[0].Type)
	assert.Equal(t, "invoice", payment.Fields[2].Name)
	assert.Equal(t, []string{"ForeignKey -> invoices", "relationship -> Invoice"}, payment.Relationships)

	// Model bases never double as services.
	assert.Empty(t, NewPython().ExtractServices(src))
}
