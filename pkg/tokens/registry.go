// Package tokens resolves asset addresses into Token entities. Contract
// metadata is read once per asset and memoized; reverted reads fall back to
// placeholder metadata rather than failing the event that referenced the
// asset.
package tokens

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/messari/subgraphs-sub011/pkg/onchain"
	"github.com/messari/subgraphs-sub011/pkg/schema"
	"github.com/messari/subgraphs-sub011/pkg/store"
)

// Registry memoizes token resolution on top of the entity store, so repeat
// lookups inside one process never re-read contract metadata even when the
// host store is remote.
type Registry struct {
	log    *zap.Logger
	db     store.Store
	reader onchain.TokenReader
	memo   *xsync.Map[string, *schema.Token]
}

// NewRegistry wires a registry against the host store and contract reader.
func NewRegistry(log *zap.Logger, db store.Store, reader onchain.TokenReader) *Registry {
	return &Registry{
		log:    log,
		db:     db,
		reader: reader,
		memo:   xsync.NewMap[string, *schema.Token](),
	}
}

// GetOrCreate returns the Token entity for an asset, creating and resolving
// it on first sight. Creation-time fields of an existing record are never
// mutated.
func (r *Registry) GetOrCreate(ctx context.Context, asset common.Address) *schema.Token {
	id := schema.AddressID(asset)
	if tok, ok := r.memo.Load(id); ok {
		return tok
	}

	tok, created := store.GetOrCreate(r.db, store.Tokens, id, func() *schema.Token {
		return r.resolve(ctx, asset)
	})
	if created {
		r.log.Debug("token registered",
			zap.String("token", id),
			zap.String("symbol", tok.Symbol),
			zap.Int32("decimals", tok.Decimals),
		)
	}
	r.memo.Store(id, tok)
	return tok
}

// resolve reads symbol, name and decimals from the contract, substituting
// the unresolved defaults for any reverted call.
func (r *Registry) resolve(ctx context.Context, asset common.Address) *schema.Token {
	tok := schema.NewToken(asset)
	tok.Symbol = r.reader.Symbol(ctx, asset).UnwrapOr(tok.Symbol)
	tok.Name = r.reader.Name(ctx, asset).UnwrapOr(tok.Name)
	if res := r.reader.Decimals(ctx, asset); !res.Reverted() {
		tok.Decimals = int32(res.UnwrapOr(18))
	} else {
		r.log.Warn("token decimals call reverted, assuming 18",
			zap.String("token", tok.ID))
	}
	return tok
}

// RefreshPrice opportunistically stamps a fresh oracle reading onto the
// token. Older blocks never overwrite newer readings.
func (r *Registry) RefreshPrice(tok *schema.Token, priceUSD decimal.Decimal, blockNumber uint64) {
	if blockNumber < tok.LastPriceBlock {
		return
	}
	tok.LastPriceUSD = priceUSD
	tok.LastPriceBlock = blockNumber
	r.db.Put(store.Tokens, tok.ID, tok)
}
