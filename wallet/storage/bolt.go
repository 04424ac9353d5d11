package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	mintQuotesBucket = "mint_quotes"
)

var ErrQuoteNotFound = errors.New("quote not found")

var _ QuoteDB = (*BoltDB)(nil)

type BoltDB struct {
	bolt *bolt.DB
}

// InitBolt opens (or creates) wallet.db in path.
func InitBolt(path string) (*BoltDB, error) {
	db, err := bolt.Open(filepath.Join(path, "wallet.db"), 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("error setting bolt db: %v", err)
	}

	boltdb := &BoltDB{bolt: db}
	if err := boltdb.initWalletBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error setting bolt db: %v", err)
	}

	return boltdb, nil
}

func (db *BoltDB) initWalletBuckets() error {
	return db.bolt.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(mintQuotesBucket))
		return err
	})
}

func (db *BoltDB) Close() error {
	return db.bolt.Close()
}

func (db *BoltDB) SaveMintQuote(quote MintQuote) error {
	if len(quote.Hash) == 0 {
		return errors.New("quote hash cannot be empty")
	}

	jsonQuote, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("invalid mint quote: %v", err)
	}

	return db.bolt.Update(func(tx *bolt.Tx) error {
		quotesb := tx.Bucket([]byte(mintQuotesBucket))
		return quotesb.Put([]byte(quote.Hash), jsonQuote)
	})
}

func (db *BoltDB) GetMintQuote(hash string) *MintQuote {
	var quote *MintQuote

	if err := db.bolt.View(func(tx *bolt.Tx) error {
		quotesb := tx.Bucket([]byte(mintQuotesBucket))
		quoteBytes := quotesb.Get([]byte(hash))
		if quoteBytes == nil {
			return ErrQuoteNotFound
		}
		return json.Unmarshal(quoteBytes, &quote)
	}); err != nil {
		return nil
	}

	return quote
}

// GetMintQuotes returns all quotes, oldest first.
func (db *BoltDB) GetMintQuotes() []MintQuote {
	quotes := []MintQuote{}

	if err := db.bolt.View(func(tx *bolt.Tx) error {
		quotesb := tx.Bucket([]byte(mintQuotesBucket))

		c := quotesb.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var quote MintQuote
			if err := json.Unmarshal(v, &quote); err != nil {
				return fmt.Errorf("error getting mint quotes: %v", err)
			}
			quotes = append(quotes, quote)
		}
		return nil
	}); err != nil {
		return []MintQuote{}
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].CreatedAt < quotes[j].CreatedAt
	})
	return quotes
}

func (db *BoltDB) DeleteMintQuote(hash string) error {
	return db.bolt.Update(func(tx *bolt.Tx) error {
		quotesb := tx.Bucket([]byte(mintQuotesBucket))
		if quotesb.Get([]byte(hash)) == nil {
			return ErrQuoteNotFound
		}
		return quotesb.Delete([]byte(hash))
	})
}
