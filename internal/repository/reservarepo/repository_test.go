package reservarepo_test

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/logger"
	"decolei/internal/repository/reservarepo"
	"decolei/internal/service/reservaservice"
	"decolei/migrations"
)

// openTestDB abre o Postgres de TEST_DATABASE_URL e aplica as migrações.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL não definida")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// Pacotes de teste rodam em paralelo contra o mesmo banco.
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.ExecContext(context.Background(), `SELECT pg_advisory_lock(7001)`)
	require.NoError(t, err)
	defer conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock(7001)`)

	goose.SetBaseFS(migrations.FS)
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(db, "."))
	return db
}

func seedPacote(t *testing.T, db *sql.DB, capacidade int) (usuarioID, pacoteID string) {
	t.Helper()
	usuarioID, pacoteID = uuid.NewString(), uuid.NewString()

	_, err := db.Exec(`INSERT INTO usuarios (id, email, password_hash, nome_completo, documento)
		VALUES ($1, $2, 'x', 'Teste', $3)`, usuarioID, usuarioID+"@teste.com", usuarioID)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO pacotes (id, titulo, destino, valor, data_inicio, data_fim, capacidade, usuario_id)
		VALUES ($1, 'Rio', 'Rio de Janeiro', 1000, NOW() + INTERVAL '10 days', NOW() + INTERVAL '15 days', $2, $3)`,
		pacoteID, capacidade, usuarioID)
	require.NoError(t, err)
	return usuarioID, pacoteID
}

func novaReserva(usuarioID, pacoteID string, viajantes int) domain.NovaReserva {
	vs := make([]domain.Viajante, viajantes)
	for i := range vs {
		vs[i] = domain.Viajante{Nome: "Viajante", Documento: uuid.NewString()[:8]}
	}
	return domain.NovaReserva{
		ID:        uuid.NewString(),
		Numero:    reservaservice.NovoNumero(),
		UsuarioID: usuarioID,
		PacoteID:  pacoteID,
		Viajantes: vs,
		Data:      time.Now().UTC(),
	}
}

func TestCreate_ConcorrenciaNaoUltrapassaCapacidade(t *testing.T) {
	db := openTestDB(t)
	repo := reservarepo.NewReservaRepository(db, 10*time.Second, logger.NewNop())
	usuarioID, pacoteID := seedPacote(t, db, 5)

	// 10 reservas de 1 vaga disputando 5 vagas.
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		criadas   int
		esgotadas int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(context.Background(), novaReserva(usuarioID, pacoteID, 0))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				criadas++
				return
			}
			var capErr *apperror.CapacityExceededError
			if assert.ErrorAs(t, err, &capErr) {
				esgotadas++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, criadas)
	assert.Equal(t, 5, esgotadas)

	var ocupadas int
	require.NoError(t, db.QueryRow(`SELECT COALESCE(SUM(vagas), 0) FROM reservas WHERE pacote_id = $1`, pacoteID).Scan(&ocupadas))
	assert.Equal(t, 5, ocupadas)
}

func TestReplaceViajantes_IgnoraAsProprias(t *testing.T) {
	db := openTestDB(t)
	repo := reservarepo.NewReservaRepository(db, 10*time.Second, logger.NewNop())
	usuarioID, pacoteID := seedPacote(t, db, 3)
	semCheck := func(domain.Reserva) error { return nil }

	// Titular + 2 viajantes lotam o pacote.
	res, err := repo.Create(context.Background(), novaReserva(usuarioID, pacoteID, 2))
	require.NoError(t, err)

	dois := novaReserva(usuarioID, pacoteID, 2).Viajantes

	encolhida, err := repo.ReplaceViajantes(context.Background(), res.ID, nil, semCheck)
	require.NoError(t, err)
	assert.Empty(t, encolhida.Viajantes)
	assert.Equal(t, "1000", encolhida.ValorTotal.String())

	// Volta a ocupar as 3 vagas: as vagas antigas da própria reserva não contam.
	crescida, err := repo.ReplaceViajantes(context.Background(), res.ID, dois, semCheck)
	require.NoError(t, err)
	assert.Len(t, crescida.Viajantes, 2)

	_, err = repo.ReplaceViajantes(context.Background(), res.ID, append(dois, domain.Viajante{Nome: "Extra", Documento: "999"}), semCheck)
	assert.IsType(t, &apperror.CapacityExceededError{}, err)

	_, err = repo.Create(context.Background(), novaReserva(usuarioID, pacoteID, 0))
	assert.IsType(t, &apperror.CapacityExceededError{}, err)
}

func TestCreate_ValorTotalPorVaga(t *testing.T) {
	db := openTestDB(t)
	repo := reservarepo.NewReservaRepository(db, 10*time.Second, logger.NewNop())
	usuarioID, pacoteID := seedPacote(t, db, 30)

	res, err := repo.Create(context.Background(), novaReserva(usuarioID, pacoteID, 2))

	require.NoError(t, err)
	assert.Equal(t, "3000", res.ValorTotal.String())
	assert.Equal(t, domain.StatusPendente, res.Status)
	assert.Len(t, res.Viajantes, 2)
}
