package escrow

// Hand-trimmed ABIs: only the entry points and the event this service uses.

const escrowABIJSON = `[
  {
    "type": "function",
    "name": "initiateFiatTransaction",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "token", "type": "address"},
      {"name": "amount", "type": "uint256"},
      {"name": "fiatBankAccountNumber", "type": "string"},
      {"name": "fiatAmount", "type": "uint256"},
      {"name": "fiatBank", "type": "string"},
      {"name": "recipientName", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "completeTransaction",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "txId", "type": "bytes32"},
      {"name": "amountSpent", "type": "uint256"}
    ],
    "outputs": []
  },
  {
    "type": "event",
    "name": "TransactionInitiated",
    "anonymous": false,
    "inputs": [
      {"name": "txId", "type": "bytes32", "indexed": true},
      {"name": "user", "type": "address", "indexed": true},
      {"name": "amount", "type": "uint256", "indexed": false}
    ]
  }
]`

const erc20ABIJSON = `[
  {
    "type": "function",
    "name": "approve",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "spender", "type": "address"},
      {"name": "amount", "type": "uint256"}
    ],
    "outputs": [{"name": "", "type": "bool"}]
  }
]`
