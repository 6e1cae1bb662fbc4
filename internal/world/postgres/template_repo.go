// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/mossgate/mossgate/internal/world"
)

// TemplateRepository implements world.TemplateRepository using PostgreSQL.
// Templates are read at snapshot load and written only by seeding.
type TemplateRepository struct {
	pool querier
}

// NewTemplateRepository creates a new PostgreSQL template repository.
func NewTemplateRepository(pool querier) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

const itemColumns = `id, name, description, aliases, cost, movable, consumable,
	hp_restore, weapon, weapon_damage, weapon_type, readable, text`

// Item retrieves an item template by ID.
func (r *TemplateRepository) Item(ctx context.Context, id string) (*world.ItemTemplate, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `
		SELECT `+itemColumns+` FROM item_templates WHERE id = $1
	`, id)
	t, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ITEM_NOT_FOUND").With("id", id).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ITEM_GET_FAILED").With("id", id).Wrap(err)
	}
	return t, nil
}

// ListItems returns all item templates.
func (r *TemplateRepository) ListItems(ctx context.Context) ([]*world.ItemTemplate, error) {
	rows, err := db(ctx, r.pool).Query(ctx, `
		SELECT `+itemColumns+` FROM item_templates ORDER BY id
	`)
	if err != nil {
		return nil, oops.Code("ITEM_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	var items []*world.ItemTemplate
	for rows.Next() {
		t, err := scanItem(rows)
		if err != nil {
			return nil, oops.Code("ITEM_SCAN_FAILED").Wrap(err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ITEM_QUERY_FAILED").Wrap(err)
	}
	return items, nil
}

// UpsertItem creates or replaces an item template.
func (r *TemplateRepository) UpsertItem(ctx context.Context, t *world.ItemTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	aliases, err := marshalJSON(t.Aliases, "aliases")
	if err != nil {
		return err
	}
	_, err = db(ctx, r.pool).Exec(ctx, `
		INSERT INTO item_templates (id, name, description, aliases, cost, movable,
			consumable, hp_restore, weapon, weapon_damage, weapon_type, readable, text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			aliases = EXCLUDED.aliases, cost = EXCLUDED.cost,
			movable = EXCLUDED.movable, consumable = EXCLUDED.consumable,
			hp_restore = EXCLUDED.hp_restore, weapon = EXCLUDED.weapon,
			weapon_damage = EXCLUDED.weapon_damage, weapon_type = EXCLUDED.weapon_type,
			readable = EXCLUDED.readable, text = EXCLUDED.text
	`, t.ID, t.Name, t.Description, aliases, t.Cost, t.Movable, t.Consumable,
		t.HPRestore, t.Weapon, t.WeaponDamage, t.WeaponType, t.Readable, t.Text)
	if err != nil {
		return oops.Code("ITEM_UPSERT_FAILED").With("id", t.ID).Wrap(err)
	}
	return nil
}

const npcColumns = `id, short_name, name, description, dialogue, personality,
	use_ai, triggers, sells`

// Npc retrieves an NPC template by ID.
func (r *TemplateRepository) Npc(ctx context.Context, id string) (*world.NpcTemplate, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `
		SELECT `+npcColumns+` FROM npc_templates WHERE id = $1
	`, id)
	t, err := scanNpc(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NPC_NOT_FOUND").With("id", id).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("NPC_GET_FAILED").With("id", id).Wrap(err)
	}
	return t, nil
}

// ListNpcs returns all NPC templates.
func (r *TemplateRepository) ListNpcs(ctx context.Context) ([]*world.NpcTemplate, error) {
	rows, err := db(ctx, r.pool).Query(ctx, `
		SELECT `+npcColumns+` FROM npc_templates ORDER BY id
	`)
	if err != nil {
		return nil, oops.Code("NPC_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	var npcs []*world.NpcTemplate
	for rows.Next() {
		t, err := scanNpc(rows)
		if err != nil {
			return nil, oops.Code("NPC_SCAN_FAILED").Wrap(err)
		}
		npcs = append(npcs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("NPC_QUERY_FAILED").Wrap(err)
	}
	return npcs, nil
}

// UpsertNpc creates or replaces an NPC template.
func (r *TemplateRepository) UpsertNpc(ctx context.Context, t *world.NpcTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	dialogue, err := marshalJSON(t.Dialogue, "dialogue")
	if err != nil {
		return err
	}
	triggers, err := marshalJSON(t.Triggers, "triggers")
	if err != nil {
		return err
	}
	sells, err := marshalJSON(t.Sells, "sells")
	if err != nil {
		return err
	}
	_, err = db(ctx, r.pool).Exec(ctx, `
		INSERT INTO npc_templates (id, short_name, name, description, dialogue,
			personality, use_ai, triggers, sells)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			short_name = EXCLUDED.short_name, name = EXCLUDED.name,
			description = EXCLUDED.description, dialogue = EXCLUDED.dialogue,
			personality = EXCLUDED.personality, use_ai = EXCLUDED.use_ai,
			triggers = EXCLUDED.triggers, sells = EXCLUDED.sells
	`, t.ID, t.ShortName, t.Name, t.Description, dialogue,
		t.Personality, t.UseAI, triggers, sells)
	if err != nil {
		return oops.Code("NPC_UPSERT_FAILED").With("id", t.ID).Wrap(err)
	}
	return nil
}

const monsterColumns = `id, name, description, hp, min_atk, max_atk,
	xp_reward, gold_reward, item_drop, newsworthy`

// Monster retrieves a monster template by ID.
func (r *TemplateRepository) Monster(ctx context.Context, id string) (*world.MonsterTemplate, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `
		SELECT `+monsterColumns+` FROM monster_templates WHERE id = $1
	`, id)
	t, err := scanMonster(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MONSTER_NOT_FOUND").With("id", id).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("MONSTER_GET_FAILED").With("id", id).Wrap(err)
	}
	return t, nil
}

// ListMonsters returns all monster templates.
func (r *TemplateRepository) ListMonsters(ctx context.Context) ([]*world.MonsterTemplate, error) {
	rows, err := db(ctx, r.pool).Query(ctx, `
		SELECT `+monsterColumns+` FROM monster_templates ORDER BY id
	`)
	if err != nil {
		return nil, oops.Code("MONSTER_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	var monsters []*world.MonsterTemplate
	for rows.Next() {
		t, err := scanMonster(rows)
		if err != nil {
			return nil, oops.Code("MONSTER_SCAN_FAILED").Wrap(err)
		}
		monsters = append(monsters, t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("MONSTER_QUERY_FAILED").Wrap(err)
	}
	return monsters, nil
}

// UpsertMonster creates or replaces a monster template.
func (r *TemplateRepository) UpsertMonster(ctx context.Context, t *world.MonsterTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := db(ctx, r.pool).Exec(ctx, `
		INSERT INTO monster_templates (id, name, description, hp, min_atk,
			max_atk, xp_reward, gold_reward, item_drop, newsworthy)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			hp = EXCLUDED.hp, min_atk = EXCLUDED.min_atk, max_atk = EXCLUDED.max_atk,
			xp_reward = EXCLUDED.xp_reward, gold_reward = EXCLUDED.gold_reward,
			item_drop = EXCLUDED.item_drop, newsworthy = EXCLUDED.newsworthy
	`, t.ID, t.Name, t.Description, t.HP, t.MinAtk,
		t.MaxAtk, t.XPReward, t.GoldReward, t.ItemDrop, t.Newsworthy)
	if err != nil {
		return oops.Code("MONSTER_UPSERT_FAILED").With("id", t.ID).Wrap(err)
	}
	return nil
}

func scanItem(row pgx.Row) (*world.ItemTemplate, error) {
	var t world.ItemTemplate
	var aliases []byte
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &aliases, &t.Cost, &t.Movable,
		&t.Consumable, &t.HPRestore, &t.Weapon, &t.WeaponDamage, &t.WeaponType,
		&t.Readable, &t.Text); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(aliases, &t.Aliases, "aliases"); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanNpc(row pgx.Row) (*world.NpcTemplate, error) {
	var t world.NpcTemplate
	var dialogue, triggers, sells []byte
	if err := row.Scan(&t.ID, &t.ShortName, &t.Name, &t.Description, &dialogue,
		&t.Personality, &t.UseAI, &triggers, &sells); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(dialogue, &t.Dialogue, "dialogue"); err != nil {
		return nil, err
	}
	t.Triggers = make(map[string]string)
	if err := unmarshalJSON(triggers, &t.Triggers, "triggers"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(sells, &t.Sells, "sells"); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanMonster(row pgx.Row) (*world.MonsterTemplate, error) {
	var t world.MonsterTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.HP, &t.MinAtk, &t.MaxAtk,
		&t.XPReward, &t.GoldReward, &t.ItemDrop, &t.Newsworthy); err != nil {
		return nil, err
	}
	return &t, nil
}
