// Package valuta keeps fiat and crypto currency wallets for local users and
// values them with exchange rates aggregated from several sources.
//
// The core pieces are:
//   - Rate sources: clients fetching a rate table per unit of a base currency,
//     see the coingecko and exchangerate packages.
//   - Aggregator: polls every source, merges their tables and records the
//     failures without stopping the update.
//   - RatesStore: persists the current rate document and an append-only history
//     of every update.
//   - Converter: turns the stored table into a rate between any two currencies
//     and tells whether the table has expired.
//   - Portfolio and Wallet: one exact-decimal balance per user and currency.
//   - TradingEngine: buys and sells against a portfolio and estimates trades in USD.
//   - Auth and Session: bcrypt protected users and the logged in user.
//
// This package serves as the foundational logic for the `vth` command-line tool.
package valuta
