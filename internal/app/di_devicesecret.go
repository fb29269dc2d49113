package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/allisson/devicesecret/internal/config"
	deviceRepository "github.com/allisson/devicesecret/internal/devicesecret/repository"
	deviceService "github.com/allisson/devicesecret/internal/devicesecret/service"
	deviceUseCase "github.com/allisson/devicesecret/internal/devicesecret/usecase"
)

// KMSService returns the KMS service.
func (c *Container) KMSService() deviceService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = deviceService.NewKMSService()
	})
	return c.kmsService
}

// Keeper returns the keeper sealing the master key of the "keeper" trust anchor.
func (c *Container) Keeper() (deviceService.Keeper, error) {
	var err error
	c.keeperInit.Do(func() {
		c.keeper, err = c.KMSService().OpenKeeper(context.Background(), c.config.KeeperURI)
		if err != nil {
			c.initErrors["keeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keeper"]; exists {
		return nil, storedErr
	}
	return c.keeper, nil
}

// KeyValueStore returns the store holding the wrapped record, selected by STORE_DRIVER.
func (c *Container) KeyValueStore() (deviceUseCase.KeyValueStore, error) {
	var err error
	c.storeInit.Do(func() {
		c.store, err = c.initKeyValueStore()
		if err != nil {
			c.initErrors["store"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["store"]; exists {
		return nil, storedErr
	}
	return c.store, nil
}

// TrustAnchor returns the trust anchor holding the master key, selected by TRUST_ANCHOR.
func (c *Container) TrustAnchor() (deviceService.TrustAnchor, error) {
	var err error
	c.trustAnchorInit.Do(func() {
		c.trustAnchor, err = c.initTrustAnchor()
		if err != nil {
			c.initErrors["trustAnchor"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["trustAnchor"]; exists {
		return nil, storedErr
	}
	return c.trustAnchor, nil
}

// Envelope returns the envelope engine bound to the trust anchor.
func (c *Container) Envelope() (deviceService.Envelope, error) {
	var err error
	c.envelopeInit.Do(func() {
		var anchor deviceService.TrustAnchor
		anchor, err = c.TrustAnchor()
		if err != nil {
			err = fmt.Errorf("failed to get trust anchor for envelope: %w", err)
			c.initErrors["envelope"] = err
			return
		}
		c.envelope = deviceService.NewEnvelope(anchor)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelope"]; exists {
		return nil, storedErr
	}
	return c.envelope, nil
}

// SecretUseCase returns the device secret use case instance.
func (c *Container) SecretUseCase() (deviceUseCase.SecretUseCase, error) {
	var err error
	c.secretUseCaseInit.Do(func() {
		c.secretUseCase, err = c.initSecretUseCase()
		if err != nil {
			c.initErrors["secretUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretUseCase"]; exists {
		return nil, storedErr
	}
	return c.secretUseCase, nil
}

// initKeyValueStore creates the key-value store based on the store driver.
func (c *Container) initKeyValueStore() (deviceUseCase.KeyValueStore, error) {
	switch c.config.StoreDriver {
	case config.StoreDriverFile:
		return deviceRepository.NewFileStore(c.config.StorePath), nil
	case config.StoreDriverMemory:
		return deviceRepository.NewMemoryStore(), nil
	case config.StoreDriverPostgres, config.StoreDriverMySQL:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for key-value store: %w", err)
		}
		if c.config.StoreDriver == config.StoreDriverMySQL {
			return deviceRepository.NewMySQLStore(db), nil
		}
		return deviceRepository.NewPostgreSQLStore(db), nil
	case config.StoreDriverRedis:
		return deviceRepository.NewRedisStore(c.RedisClient(), c.config.RedisKeyPrefix), nil
	case config.StoreDriverS3:
		client, err := c.initS3Client()
		if err != nil {
			return nil, err
		}
		return deviceRepository.NewS3Store(client, c.config.S3Bucket, c.config.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", c.config.StoreDriver)
	}
}

// initS3Client creates an S3 client from the default AWS credential chain.
// A custom endpoint switches to path-style addressing for S3-compatible servers.
func (c *Container) initS3Client() (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(c.config.S3Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.config.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(c.config.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// initTrustAnchor creates the trust anchor based on the configured kind.
func (c *Container) initTrustAnchor() (deviceService.TrustAnchor, error) {
	switch c.config.TrustAnchor {
	case config.TrustAnchorSoftware:
		c.Logger().Warn("software trust anchor keeps the master key in memory only")
		return deviceService.NewSoftwareTrustAnchor(), nil
	case config.TrustAnchorKeeper:
		keeper, err := c.Keeper()
		if err != nil {
			return nil, fmt.Errorf("failed to get keeper for trust anchor: %w", err)
		}
		store, err := c.KeyValueStore()
		if err != nil {
			return nil, fmt.Errorf("failed to get key-value store for trust anchor: %w", err)
		}
		return deviceService.NewKeeperTrustAnchor(keeper, store, c.Installation().KekNamespace()), nil
	case config.TrustAnchorVault:
		client, err := deviceService.NewVaultClient(deviceService.VaultConfig{
			Address:    c.config.VaultAddress,
			Token:      c.config.VaultToken,
			MountPath:  c.config.VaultTransitMount,
			Timeout:    c.config.VaultTimeout,
			MaxRetries: 2,
		})
		if err != nil {
			return nil, err
		}
		return deviceService.NewVaultTransitTrustAnchor(client, c.config.VaultTransitMount), nil
	default:
		return nil, fmt.Errorf("unsupported trust anchor: %s", c.config.TrustAnchor)
	}
}

// initSecretUseCase creates the secret use case with all its dependencies.
func (c *Container) initSecretUseCase() (deviceUseCase.SecretUseCase, error) {
	logger := c.Logger()

	anchor, err := c.TrustAnchor()
	if err != nil {
		return nil, fmt.Errorf("failed to get trust anchor for secret use case: %w", err)
	}

	envelope, err := c.Envelope()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope for secret use case: %w", err)
	}

	store, err := c.KeyValueStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key-value store for secret use case: %w", err)
	}

	baseUseCase := deviceUseCase.NewSecretUseCase(c.Installation(), anchor, envelope, store, logger)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for secret use case: %w", err)
		}
		return deviceUseCase.NewSecretUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
