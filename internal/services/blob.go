package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/rocjay1/ledger-sync/internal/remote"
)

// BlobDocumentStore keeps each ledger document as one blob in Azure Blob
// Storage. Blobs are always downloaded and uploaded whole.
type BlobDocumentStore struct {
	serviceURL string
	container  string
	shared     *azblob.Client
}

// NewBlobDocumentStore creates a new BlobDocumentStore instance.
func NewBlobDocumentStore() (*BlobDocumentStore, error) {
	blobURL := os.Getenv("BLOB_SERVICE_URL")
	if blobURL == "" {
		return nil, fmt.Errorf("BLOB_SERVICE_URL environment variable is required")
	}

	container := os.Getenv("LEDGER_CONTAINER")
	if container == "" {
		container = "ledger"
	}

	slog.Info("initializing blob document store", "blob_url", blobURL, "container", container)
	store := &BlobDocumentStore{serviceURL: blobURL, container: container}

	// Azurite does not accept bearer tokens over http, so local runs use the
	// shared key and ignore the caller's token.
	if isLocal(blobURL) {
		slog.Info("using Azurite shared key credentials for blob document store")
		name, key := getAzuriteCredentials()
		cred, err := azblob.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		store.shared, err = azblob.NewClientWithSharedKeyCredential(blobURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client with shared key: %w", err)
		}
	}

	slog.Info("blob document store initialized successfully")
	return store, nil
}

// clientFor returns a client that authenticates with accessToken.
func (s *BlobDocumentStore) clientFor(accessToken string) (*azblob.Client, error) {
	if s.shared != nil {
		return s.shared, nil
	}
	if accessToken == "" {
		return nil, remote.ErrUnauthorized
	}
	client, err := azblob.NewClient(s.serviceURL, accessTokenCredential{token: accessToken}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	return client, nil
}

// Fetch downloads the document blob.
func (s *BlobDocumentStore) Fetch(ctx context.Context, documentID, accessToken string) ([]byte, error) {
	client, err := s.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	slog.Info("downloading document", "container", s.container, "document_id", documentID)
	resp, err := client.DownloadStream(ctx, s.container, documentID, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, remote.ErrDocumentNotFound
		}
		slog.Error("failed to download document", "container", s.container, "document_id", documentID, "error", err)
		return nil, fmt.Errorf("failed to download blob %s/%s: %w", s.container, documentID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob content: %w", err)
	}

	slog.Info("successfully downloaded document", "document_id", documentID, "size_bytes", len(data))
	return data, nil
}

// Write replaces the document blob with raw.
func (s *BlobDocumentStore) Write(ctx context.Context, documentID, accessToken string, raw []byte) error {
	client, err := s.clientFor(accessToken)
	if err != nil {
		return err
	}

	slog.Info("uploading document", "container", s.container, "document_id", documentID, "size_bytes", len(raw))
	_, err = client.UploadBuffer(ctx, s.container, documentID, raw, nil)
	if bloberror.HasCode(err, bloberror.ContainerNotFound) {
		if _, cerr := client.CreateContainer(ctx, s.container, nil); cerr != nil && !bloberror.HasCode(cerr, bloberror.ContainerAlreadyExists) {
			slog.Warn("failed to create container", "container", s.container, "error", cerr)
		}
		_, err = client.UploadBuffer(ctx, s.container, documentID, raw, nil)
	}
	if err != nil {
		slog.Error("failed to upload document", "container", s.container, "document_id", documentID, "error", err)
		return fmt.Errorf("failed to upload blob %s/%s: %w", s.container, documentID, err)
	}

	slog.Info("successfully uploaded document", "container", s.container, "document_id", documentID)
	return nil
}
