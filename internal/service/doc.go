// Package service contains the application use cases: resolving who an
// author may address, creating tasks and fanning them out to recipients,
// delivering notifications after commit, and aggregating reports into the
// dashboards curators look at.
//
// Services depend on the store interfaces and on the policy engine, never on
// a concrete database. Transactions are opened through store.Transactor so
// that after-commit work registered with store.AfterCommit runs only once the
// data is durable.
//
// Error handling:
//   - Expected conditions are sentinel errors (ErrNoEligibleRecipients,
//     ErrTaskNotFound, ...) or domain.ErrValidation.
//   - Unexpected failures are wrapped in *ServiceError.
//   - Delivery problems are reported as data in domain.DeliveryResult and
//     never as errors.
package service
