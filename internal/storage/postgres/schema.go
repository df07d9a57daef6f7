package postgres

// schema is the full DDL for the application tables. The partial unique
// index on user_prompts enforces the one-active-prompt-per-user invariant at
// the data layer rather than by query convention.
const schema = `
CREATE TABLE IF NOT EXISTS user_profiles (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	clerk_user_id TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	first_name TEXT,
	last_name TEXT,
	default_currency CHAR(3) NOT NULL DEFAULT 'PHP',
	custom_gemini_api_key TEXT,
	theme_preference TEXT NOT NULL DEFAULT 'clarity',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transactions (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id UUID NOT NULL REFERENCES user_profiles(id),
	amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
	currency CHAR(3) NOT NULL,
	transaction_type TEXT NOT NULL CHECK (transaction_type IN ('income', 'expense')),
	merchant_name TEXT,
	category TEXT,
	transaction_date DATE NOT NULL,
	description TEXT,
	notes TEXT,
	image_url TEXT,
	is_ai_parsed BOOLEAN NOT NULL DEFAULT FALSE,
	confidence_score DOUBLE PRECISION CHECK (confidence_score BETWEEN 0 AND 1),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS transactions_user_date_idx
	ON transactions (user_id, transaction_date DESC);

CREATE TABLE IF NOT EXISTS user_prompts (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id UUID NOT NULL REFERENCES user_profiles(id),
	name TEXT NOT NULL,
	prompt_content TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT FALSE,
	version INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS user_prompts_one_active_idx
	ON user_prompts (user_id) WHERE is_active;
`
