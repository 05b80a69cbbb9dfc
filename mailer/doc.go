// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package mailer delivers rendered reports.

The Mailer interface is the scheduler's outbound boundary; the core never
sees transport details. Two implementations:

  - SMTP: plain SMTP delivery with an optional CSV attachment
    (multipart/mixed, base64)
  - Log: logs the delivery instead of sending it; used when SMTP_ADDR is
    unset and in tests
*/
package mailer
