package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"

	"github.com/chainrelay/correlator/internal/config"
	"github.com/chainrelay/correlator/internal/types"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// PostgresStore is the Postgres-backed entity store adapter, following
// the teacher's internal/database connect/upsert conventions.
type PostgresStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewPostgresStore opens a connection pool and verifies connectivity.
func NewPostgresStore(cfg config.DatabaseConfig, logger zerolog.Logger) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Database).
		Msg("entity store connected")

	return &PostgresStore{db: db, logger: logger.With().Str("component", "store").Logger()}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) GetEnvelope(ctx context.Context, id string) (*types.CrosschainMessage, bool, error) {
	const q = `
		SELECT id, protocol, message_key,
			outbound_block, outbound_timestamp, outbound_tx_hash, outbound_chain_id, outbound_from,
			inbound_block, inbound_timestamp, inbound_tx_hash, inbound_chain_id, inbound_to,
			route_src_eid, route_dst_eid, route_src_slug, route_dst_slug,
			matched, latency, created_at, updated_at
		FROM crosschain_messages WHERE id = $1`

	var m types.CrosschainMessage
	var outboundFrom, inboundTo sql.NullString
	var outboundTxHash, inboundTxHash sql.NullString
	var srcSlug, dstSlug sql.NullString
	var latency sql.NullInt64

	row := s.db.QueryRowContext(ctx, q, id)
	err := row.Scan(
		&m.ID, &m.Protocol, &m.MessageKey,
		&m.OutboundBlock, &m.OutboundTimestamp, &outboundTxHash, &m.OutboundChainID, &outboundFrom,
		&m.InboundBlock, &m.InboundTimestamp, &inboundTxHash, &m.InboundChainID, &inboundTo,
		&m.Route.SrcEid, &m.Route.DstEid, &srcSlug, &dstSlug,
		&m.Matched, &latency, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get envelope: %w", err)
	}
	m.OutboundFrom = types.Address(outboundFrom.String)
	m.InboundTo = types.Address(inboundTo.String)
	m.OutboundTxHash = outboundTxHash.String
	m.InboundTxHash = inboundTxHash.String
	m.Route.SrcSlug = srcSlug.String
	m.Route.DstSlug = dstSlug.String
	if latency.Valid {
		l := latency.Int64
		m.Latency = &l
	}
	return &m, true, nil
}

func (s *PostgresStore) SetEnvelope(ctx context.Context, m *types.CrosschainMessage) error {
	const q = `
		INSERT INTO crosschain_messages (
			id, protocol, message_key,
			outbound_block, outbound_timestamp, outbound_tx_hash, outbound_chain_id, outbound_from,
			inbound_block, inbound_timestamp, inbound_tx_hash, inbound_chain_id, inbound_to,
			route_src_eid, route_dst_eid, route_src_slug, route_dst_slug,
			matched, latency, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		ON CONFLICT (id) DO UPDATE SET
			outbound_block = EXCLUDED.outbound_block,
			outbound_timestamp = EXCLUDED.outbound_timestamp,
			outbound_tx_hash = EXCLUDED.outbound_tx_hash,
			outbound_chain_id = EXCLUDED.outbound_chain_id,
			outbound_from = EXCLUDED.outbound_from,
			inbound_block = EXCLUDED.inbound_block,
			inbound_timestamp = EXCLUDED.inbound_timestamp,
			inbound_tx_hash = EXCLUDED.inbound_tx_hash,
			inbound_chain_id = EXCLUDED.inbound_chain_id,
			inbound_to = EXCLUDED.inbound_to,
			route_src_eid = EXCLUDED.route_src_eid,
			route_dst_eid = EXCLUDED.route_dst_eid,
			route_src_slug = EXCLUDED.route_src_slug,
			route_dst_slug = EXCLUDED.route_dst_slug,
			matched = EXCLUDED.matched,
			latency = EXCLUDED.latency,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, q,
		m.ID, m.Protocol, m.MessageKey,
		m.OutboundBlock, m.OutboundTimestamp, m.OutboundTxHash, m.OutboundChainID, string(m.OutboundFrom),
		m.InboundBlock, m.InboundTimestamp, m.InboundTxHash, m.InboundChainID, string(m.InboundTo),
		m.Route.SrcEid, m.Route.DstEid, m.Route.SrcSlug, m.Route.DstSlug,
		m.Matched, m.Latency, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("set envelope: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPayload(ctx context.Context, id string) (*types.AppPayload, bool, error) {
	const q = `
		SELECT id, app, payload_type, transporting_protocol, transporting_message_id, crosschain_message_id,
			outbound_asset_address, outbound_amount, outbound_sender, outbound_target_address, outbound_raw,
			inbound_asset_address, inbound_amount, inbound_recipient, inbound_raw,
			matched, created_at, updated_at
		FROM app_payloads WHERE id = $1`

	var p types.AppPayload
	var outboundAmount, inboundAmount sql.NullString

	row := s.db.QueryRowContext(ctx, q, id)
	err := row.Scan(
		&p.ID, &p.App, &p.PayloadType, &p.TransportingProtocol, &p.TransportingMessageID, &p.CrosschainMessageID,
		&p.OutboundAssetAddress, &outboundAmount, &p.OutboundSender, &p.OutboundTargetAddress, &p.OutboundRaw,
		&p.InboundAssetAddress, &inboundAmount, &p.InboundRecipient, &p.InboundRaw,
		&p.Matched, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get payload: %w", err)
	}
	if outboundAmount.Valid {
		p.OutboundAmount, _ = new(big.Int).SetString(outboundAmount.String, 10)
	}
	if inboundAmount.Valid {
		p.InboundAmount, _ = new(big.Int).SetString(inboundAmount.String, 10)
	}
	return &p, true, nil
}

func (s *PostgresStore) SetPayload(ctx context.Context, p *types.AppPayload) error {
	const q = `
		INSERT INTO app_payloads (
			id, app, payload_type, transporting_protocol, transporting_message_id, crosschain_message_id,
			outbound_asset_address, outbound_amount, outbound_sender, outbound_target_address, outbound_raw,
			inbound_asset_address, inbound_amount, inbound_recipient, inbound_raw,
			matched, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (id) DO UPDATE SET
			outbound_asset_address = EXCLUDED.outbound_asset_address,
			outbound_amount = EXCLUDED.outbound_amount,
			outbound_sender = EXCLUDED.outbound_sender,
			outbound_target_address = EXCLUDED.outbound_target_address,
			outbound_raw = EXCLUDED.outbound_raw,
			inbound_asset_address = EXCLUDED.inbound_asset_address,
			inbound_amount = EXCLUDED.inbound_amount,
			inbound_recipient = EXCLUDED.inbound_recipient,
			inbound_raw = EXCLUDED.inbound_raw,
			matched = EXCLUDED.matched,
			updated_at = EXCLUDED.updated_at
	`
	var outboundAmount, inboundAmount interface{}
	if p.OutboundAmount != nil {
		outboundAmount = p.OutboundAmount.String()
	}
	if p.InboundAmount != nil {
		inboundAmount = p.InboundAmount.String()
	}
	_, err := s.db.ExecContext(ctx, q,
		p.ID, p.App, p.PayloadType, p.TransportingProtocol, p.TransportingMessageID, p.CrosschainMessageID,
		string(p.OutboundAssetAddress), outboundAmount, string(p.OutboundSender), string(p.OutboundTargetAddress), p.OutboundRaw,
		string(p.InboundAssetAddress), inboundAmount, string(p.InboundRecipient), p.InboundRaw,
		p.Matched, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("set payload: %w", err)
	}
	return nil
}

func (s *PostgresStore) PayloadsByTransportingMessageID(ctx context.Context, transportingMessageID string) ([]*types.AppPayload, error) {
	const q = `SELECT id FROM app_payloads WHERE transporting_message_id = $1`
	rows, err := s.db.QueryContext(ctx, q, transportingMessageID)
	if err != nil {
		return nil, fmt.Errorf("get_where payloads: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan payload id: %w", err)
		}
		ids = append(ids, id)
	}

	out := make([]*types.AppPayload, 0, len(ids))
	for _, id := range ids {
		p, ok, err := s.GetPayload(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PostgresStore) GetBusPreRecord(ctx context.Context, key string) (*types.BusRodeOftSentLfg, bool, error) {
	const q = `
		SELECT key, has_passenger, passenger_asset_id, passenger_receiver, passenger_amount_sd, passenger_native_drop,
			has_token_data, from_address, amount_sent_ld, fare, src_eid, dst_eid, ticket_id, updated_at
		FROM bus_pre_records WHERE key = $1`

	var r types.BusRodeOftSentLfg
	var amountSentLD, fare sql.NullString

	row := s.db.QueryRowContext(ctx, q, key)
	err := row.Scan(
		&r.Key, &r.HasPassenger, &r.Passenger.AssetID, &r.Passenger.Receiver, &r.Passenger.AmountSD, &r.Passenger.NativeDrop,
		&r.HasTokenData, &r.FromAddress, &amountSentLD, &fare, &r.SrcEid, &r.DstEid, &r.TicketID, &r.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get bus pre-record: %w", err)
	}
	if amountSentLD.Valid {
		r.AmountSentLD, _ = new(big.Int).SetString(amountSentLD.String, 10)
	}
	if fare.Valid {
		r.Fare, _ = new(big.Int).SetString(fare.String, 10)
	}
	return &r, true, nil
}

func (s *PostgresStore) SetBusPreRecord(ctx context.Context, r *types.BusRodeOftSentLfg) error {
	const q = `
		INSERT INTO bus_pre_records (
			key, has_passenger, passenger_asset_id, passenger_receiver, passenger_amount_sd, passenger_native_drop,
			has_token_data, from_address, amount_sent_ld, fare, src_eid, dst_eid, ticket_id, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (key) DO UPDATE SET
			has_passenger = EXCLUDED.has_passenger,
			passenger_asset_id = EXCLUDED.passenger_asset_id,
			passenger_receiver = EXCLUDED.passenger_receiver,
			passenger_amount_sd = EXCLUDED.passenger_amount_sd,
			passenger_native_drop = EXCLUDED.passenger_native_drop,
			has_token_data = EXCLUDED.has_token_data,
			from_address = EXCLUDED.from_address,
			amount_sent_ld = EXCLUDED.amount_sent_ld,
			fare = EXCLUDED.fare,
			src_eid = EXCLUDED.src_eid,
			dst_eid = EXCLUDED.dst_eid,
			ticket_id = EXCLUDED.ticket_id,
			updated_at = EXCLUDED.updated_at
	`
	var amountSentLD, fare interface{}
	if r.AmountSentLD != nil {
		amountSentLD = r.AmountSentLD.String()
	}
	if r.Fare != nil {
		fare = r.Fare.String()
	}
	_, err := s.db.ExecContext(ctx, q,
		r.Key, r.HasPassenger, r.Passenger.AssetID, string(r.Passenger.Receiver), r.Passenger.AmountSD, r.Passenger.NativeDrop,
		r.HasTokenData, string(r.FromAddress), amountSentLD, fare, r.SrcEid, r.DstEid, r.TicketID, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("set bus pre-record: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBusDriven(ctx context.Context, envelopeID string) (*types.BusDrivenOftReceivedLfg, bool, error) {
	const q = `SELECT envelope_id, src_eid, dst_eid, passenger_keys, updated_at FROM bus_driven_records WHERE envelope_id = $1`
	var d types.BusDrivenOftReceivedLfg
	var keys pq.StringArray
	row := s.db.QueryRowContext(ctx, q, envelopeID)
	if err := row.Scan(&d.EnvelopeID, &d.SrcEid, &d.DstEid, &keys, &d.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get bus driven: %w", err)
	}
	d.PassengerKeys = []string(keys)
	return &d, true, nil
}

func (s *PostgresStore) SetBusDriven(ctx context.Context, d *types.BusDrivenOftReceivedLfg) error {
	const q = `
		INSERT INTO bus_driven_records (envelope_id, src_eid, dst_eid, passenger_keys, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (envelope_id) DO UPDATE SET
			passenger_keys = EXCLUDED.passenger_keys,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, q, d.EnvelopeID, d.SrcEid, d.DstEid, pq.Array(d.PassengerKeys), d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("set bus driven: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBusDrivenByPassengerKey(ctx context.Context, key string) (*types.BusDrivenOftReceivedLfg, bool, error) {
	const q = `
		SELECT envelope_id, src_eid, dst_eid, passenger_keys, updated_at
		FROM bus_driven_records WHERE $1 = ANY(passenger_keys)
		LIMIT 1`
	var d types.BusDrivenOftReceivedLfg
	var keys pq.StringArray
	row := s.db.QueryRowContext(ctx, q, key)
	if err := row.Scan(&d.EnvelopeID, &d.SrcEid, &d.DstEid, &keys, &d.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get bus driven by passenger key: %w", err)
	}
	d.PassengerKeys = []string(keys)
	return &d, true, nil
}
