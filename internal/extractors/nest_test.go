package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srclens/srclens/internal/elements"
)

// Test Plan for the TypeScript/NestJS extractor:
// - Controller containers carry the decorator base path and children
// - Route decorators resolve handler name, return type, and span
// - Param/Query/Body decorators map to roles; ? marks optional
// - Express-style registrations emit endpoints with their own path
// - Injectable services collect constructor parameter types
// - Entities collect columns and arrow-target relationships

const nestControllerSrc = `// Handles user accounts.
@Controller('users')
export class UsersController {
  constructor(private readonly usersService: UsersService) {}

  // List users.
  @Get()
  findAll(@Query('page') page?: number): Promise<User[]> {
    return this.usersService.findAll(page);
  }

  @Get(':id')
  findOne(@Param('id') id: string): Promise<User> {
    return this.usersService.findOne(id);
  }

  @Post()
  create(@Body() dto: CreateUserDto) {
    return this.usersService.create(dto);
  }
}
`

func TestNest_Containers(t *testing.T) {
	t.Parallel()

	src := NewSource("users.controller.ts", nestControllerSrc)
	containers := NewNest().ExtractContainers(src)

	require.Len(t, containers, 1)
	c := containers[0]
	assert.Equal(t, "UsersController", c.Name)
	assert.Equal(t, "/users", c.BasePath)
	assert.Equal(t, "Handles user accounts.", c.Doc)
	assert.Equal(t, []string{"nest:@Controller"}, c.Provenance)
	assert.Len(t, c.Endpoints, 3)
}

func TestNest_Endpoints(t *testing.T) {
	t.Parallel()

	src := NewSource("users.controller.ts", nestControllerSrc)
	endpoints := NewNest().ExtractEndpoints(src)
	require.Len(t, endpoints, 3)

	findAll := endpoints[0]
	assert.Equal(t, "findAll", findAll.Name)
	assert.Equal(t, "GET", findAll.Method)
	assert.Equal(t, "/users", findAll.Path)
	assert.Equal(t, "Promise<User[]>", findAll.ReturnType)
	assert.Equal(t, "List users.", findAll.Doc)
	require.Len(t, findAll.Parameters, 1)
	assert.Equal(t, "page", findAll.Parameters[0].Name)
	assert.Equal(t, elements.RoleQuery, findAll.Parameters[0].Role)
	assert.False(t, findAll.Parameters[0].Required)

	findOne := endpoints[1]
	assert.Equal(t, "/users/:id", findOne.Path)
	require.Len(t, findOne.Parameters, 1)
	assert.Equal(t, "id", findOne.Parameters[0].Name)
	assert.Equal(t, elements.RolePath, findOne.Parameters[0].Role)

	create := endpoints[2]
	assert.Equal(t, "POST", create.Method)
	require.Len(t, create.Parameters, 1)
	assert.Equal(t, "dto", create.Parameters[0].Name)
	assert.Equal(t, elements.RoleBody, create.Parameters[0].Role)
	assert.True(t, create.Parameters[0].Required)
}

func TestNest_ExpressRegistrations(t *testing.T) {
	t.Parallel()

	src := NewSource("routes.ts", `const router = Router();
router.get('/health', (req, res) => res.send('ok'));
app.post('/orders/:orderId/cancel', cancelOrder);
`)
	endpoints := NewNest().ExtractEndpoints(src)
	require.Len(t, endpoints, 2)

	health := endpoints[0]
	assert.Equal(t, "GET", health.Method)
	assert.Equal(t, "/health", health.Path)
	assert.Equal(t, "get_health", health.Name)
	assert.Equal(t, []string{"express:get"}, health.Provenance)

	cancel := endpoints[1]
	assert.Equal(t, "POST", cancel.Method)
	assert.Equal(t, "/orders/:orderId/cancel", cancel.Path)
	require.Len(t, cancel.Parameters, 1)
	assert.Equal(t, "orderId", cancel.Parameters[0].Name)
	assert.Equal(t, elements.RolePath, cancel.Parameters[0].Role)
}

func TestNest_Services(t *testing.T) {
	t.Parallel()

	src := NewSource("users.service.ts", `@Injectable()
export class UsersService {
  constructor(
    private readonly repo: Repository<User>,
    private readonly mailer: MailerService,
  ) {}

  findAll(): Promise<User[]> {
    return this.repo.find();
  }

  private audit() {}
}
`)
	services := NewNest().ExtractServices(src)

	require.Len(t, services, 1)
	svc := services[0]
	assert.Equal(t, "UsersService", svc.Name)
	assert.Equal(t, []string{"nest:@Injectable"}, svc.Provenance)
	assert.Equal(t, []string{"Repository<User>", "MailerService"}, svc.Dependencies)
	assert.Equal(t, []string{"findAll"}, svc.Methods)
}

func TestNest_Models(t *testing.T) {
	t.Parallel()

	src := NewSource("order.entity.ts", `@Entity()
export class Order {
  @PrimaryGeneratedColumn()
  id: number;

  @Column({ nullable: true })
  note?: string;

  @ManyToOne(() => Customer, (c) => c.orders)
  customer: Customer;

  total: number;
}
`)
	models := NewNest().ExtractModels(src)

	require.Len(t, models, 1)
	m := models[0]
	assert.Equal(t, "Order", m.Name)
	require.Len(t, m.Fields, 4)
	assert.Equal(t, "id", m.Fields[0].Name)
	assert.Equal(t, []string{"nest:@PrimaryGeneratedColumn"}, m.Fields[0].Provenance)
	assert.Equal(t, "note", m.Fields[1].Name)
	assert.Equal(t, []string{"nest:@Column"}, m.Fields[1].Provenance)
	assert.Equal(t, "customer", m.Fields[2].Name)
	assert.Equal(t, []string{"nest:@ManyToOne"}, m.Fields[2].Provenance)
	assert.Equal(t, "total", m.Fields[3].Name)
	assert.Empty(t, m.Fields[3].Provenance)
	assert.Equal(t, []string{"ManyToOne -> Customer"}, m.Relationships)
}
