package qdrant

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/oraculum-ai/oraculum-go/pkg/embedding"
	"github.com/oraculum-ai/oraculum-go/pkg/logger"
	"github.com/oraculum-ai/oraculum-go/pkg/store"
)

// QdrantContainer represents a Qdrant container for testing
type QdrantContainer struct {
	testcontainers.Container
	Host string
	Port string
}

// setupQdrantContainer sets up a Qdrant container for testing
func setupQdrantContainer(ctx context.Context) (*QdrantContainer, error) {
	port, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free port: %w", err)
	}

	portStr := fmt.Sprintf("%d", port)
	portBindings := nat.PortMap{
		"6334/tcp": []nat.PortBinding{{HostPort: portStr}},
	}

	req := testcontainers.ContainerRequest{
		Image: "qdrant/qdrant:v1.11.0",
		Env: map[string]string{
			"QDRANT__SERVICE__GRPC_PORT": "6334",
		},
		ExposedPorts: []string{"6334/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForListeningPort("6334/tcp").WithStartupTimeout(60 * time.Second),
	}

	containerInstance, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start qdrant container: %w", err)
	}

	host, err := containerInstance.Host(ctx)
	if err != nil {
		_ = containerInstance.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	mappedPort, err := containerInstance.MappedPort(ctx, "6334")
	if err != nil {
		_ = containerInstance.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	portStr = mappedPort.Port()

	if err := waitForQdrantReady(host, portStr, 30*time.Second); err != nil {
		_ = containerInstance.Terminate(ctx)
		return nil, fmt.Errorf("qdrant container not ready: %w", err)
	}

	return &QdrantContainer{
		Container: containerInstance,
		Host:      host,
		Port:      portStr,
	}, nil
}

// getFreePort gets a free port from the OS
func getFreePort() (int, error) {
	addr, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer func(addr net.Listener) {
		err := addr.Close()
		if err != nil {
			fmt.Printf("Failed to close listener: %v", err)
		}
	}(addr)

	return addr.Addr().(*net.TCPAddr).Port, nil
}

// waitForQdrantReady attempts to connect to Qdrant until it's ready or times out
func waitForQdrantReady(host, port string, timeout time.Duration) error {
	startTime := time.Now()
	for {
		if time.Since(startTime) > timeout {
			return fmt.Errorf("timed out waiting for Qdrant to be ready after %s", timeout)
		}

		conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), 2*time.Second)
		if err == nil {
			_ = conn.Close()
			// Give the gRPC service a moment after the port opens.
			time.Sleep(2 * time.Second)
			return nil
		}

		time.Sleep(500 * time.Millisecond)
	}
}

// TestAdapterWithFXModule tests the qdrant adapter end to end using the FX module.
func TestAdapterWithFXModule(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	containerInstance, err := setupQdrantContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	t.Logf("Using Qdrant on %s:%s", containerInstance.Host, containerInstance.Port)

	portNum, err := strconv.Atoi(containerInstance.Port)
	require.NoError(t, err)

	var svc store.Service

	app := fxtest.New(t,
		fx.Provide(
			func() *Config {
				return &Config{
					Endpoint: containerInstance.Host,
					Port:     portNum,
				}
			},
			func() Logger { return logger.NewNop() },
			func() *embedding.Client { return nil },
		),
		FXModule,
		fx.Populate(&svc),
	)

	err = app.Start(ctx)
	require.NoError(t, err)
	defer app.RequireStop()

	require.NotNil(t, svc)

	class := store.Class{
		Name: "TestFacts",
		Properties: []store.Property{
			{Name: "factType", DataType: store.DataTypeText, IndexSearchable: true},
			{Name: "content", DataType: store.DataTypeText, IndexSearchable: true},
			{Name: "factAdded", DataType: store.DataTypeDate, IndexSearchable: true},
		},
	}

	t.Run("CollectionLifecycle", func(t *testing.T) {
		err := svc.CreateCollection(ctx, class)
		require.NoError(t, err)

		names, err := svc.ListCollections(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, "TestFacts")

		got, err := svc.GetCollection(ctx, "TestFacts")
		require.NoError(t, err)
		assert.NotNil(t, got.Property("factType"))
		assert.NotNil(t, got.Property("content"))

		_, err = svc.GetCollection(ctx, "DoesNotExist")
		assert.ErrorIs(t, err, store.ErrCollectionNotFound)
	})

	t.Run("ObjectCRUD", func(t *testing.T) {
		ids, err := svc.AddObjects(ctx, "TestFacts", []store.Object{
			{Properties: map[string]any{"factType": "faq", "content": "first"}},
			{Properties: map[string]any{"factType": "memory", "content": "second"}},
		})
		require.NoError(t, err)
		require.Len(t, ids, 2)

		obj, err := svc.GetObject(ctx, "TestFacts", ids[0])
		require.NoError(t, err)
		assert.Equal(t, "first", obj.Properties["content"])

		count, err := svc.Count(ctx, "TestFacts")
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)

		count, err = svc.CountByProperty(ctx, "TestFacts", "factType", "faq")
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		obj.Properties["content"] = "first updated"
		err = svc.SaveObject(ctx, "TestFacts", *obj)
		require.NoError(t, err)

		obj, err = svc.GetObject(ctx, "TestFacts", ids[0])
		require.NoError(t, err)
		assert.Equal(t, "first updated", obj.Properties["content"])

		err = svc.DeleteObject(ctx, "TestFacts", ids[1])
		require.NoError(t, err)

		_, err = svc.GetObject(ctx, "TestFacts", ids[1])
		assert.ErrorIs(t, err, store.ErrObjectNotFound)
	})

	t.Run("FilteredQuery", func(t *testing.T) {
		_, err := svc.AddObjects(ctx, "TestFacts", []store.Object{
			{Properties: map[string]any{"factType": "faq", "content": "q1"}},
			{Properties: map[string]any{"factType": "faq", "content": "q2"}},
			{Properties: map[string]any{"factType": "memory", "content": "m1"}},
		})
		require.NoError(t, err)

		results, err := svc.Query(ctx, "TestFacts", store.Query{
			Filters: []*store.FilterSet{
				store.NewFilterSet(store.Must(store.NewMatch("factType", "faq"))),
			},
		})
		require.NoError(t, err)
		for _, obj := range results {
			assert.Equal(t, "faq", obj.Properties["factType"])
		}

		// Ranked queries need a vectorizer.
		_, err = svc.Query(ctx, "TestFacts", store.Query{Concept: "anything"})
		assert.ErrorIs(t, err, store.ErrNoVectorizer)
	})

	t.Run("Pagination", func(t *testing.T) {
		page1, err := svc.ListObjects(ctx, "TestFacts", store.Page{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, page1, 2)

		page2, err := svc.ListObjects(ctx, "TestFacts", store.Page{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.NotEmpty(t, page2)
		assert.NotEqual(t, page1[0].ID, page2[0].ID)
	})

	t.Run("DeleteCollection", func(t *testing.T) {
		err := svc.DeleteCollection(ctx, "TestFacts")
		require.NoError(t, err)

		_, err = svc.GetCollection(ctx, "TestFacts")
		assert.ErrorIs(t, err, store.ErrCollectionNotFound)
	})
}
